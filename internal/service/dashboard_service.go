package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/model"
	"github.com/techmilsolutions/chemmentor/internal/repository"
	"gorm.io/gorm"
)

type DashboardService interface {
	GetDashboard(userID uuid.UUID) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	profileRepo repository.StudentProfileRepository
	resultRepo  repository.ResultRepository
	roadmapRepo repository.RoadmapRepository
}

func NewDashboardService(
	profileRepo repository.StudentProfileRepository,
	resultRepo repository.ResultRepository,
	roadmapRepo repository.RoadmapRepository,
) DashboardService {
	return &dashboardService{
		profileRepo: profileRepo,
		resultRepo:  resultRepo,
		roadmapRepo: roadmapRepo,
	}
}

// DisplayPercentage rounds a stored result percentage for presentation.
func DisplayPercentage(percentage float64) int {
	return int(math.Round(percentage))
}

// BucketPercentage computes a per-bucket display percentage. Total defaults
// to 1 so an empty bucket renders 0% instead of dividing by zero.
func BucketPercentage(score, total int) int {
	if total == 0 {
		total = 1
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// GetDashboard aggregates one read-only snapshot: every result (newest
// first), the chapter progress sets, the profile, and the latest roadmap.
// Missing profile or roadmap rows are empty states, not errors.
func (s *dashboardService) GetDashboard(userID uuid.UUID) (*dto.DashboardResponse, error) {
	results, err := s.resultRepo.FindAllByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching results: %w", err)
	}

	resp := &dto.DashboardResponse{
		UserID:            userID.String(),
		AttemptedChapters: []string{},
		PassedChapters:    []string{},
		AvailableChapters: []string{},
		Results:           make([]dto.ResultResponse, 0, len(results)),
	}

	attempted := make(map[string]bool)
	passed := make(map[string]bool)
	for i := range results {
		result := &results[i]
		if result.Chapter != "" && !attempted[result.Chapter] {
			attempted[result.Chapter] = true
			resp.AttemptedChapters = append(resp.AttemptedChapters, result.Chapter)
		}
		if result.Passed && result.Chapter != "" && !passed[result.Chapter] {
			passed[result.Chapter] = true
			resp.PassedChapters = append(resp.PassedChapters, result.Chapter)
		}
		resp.Results = append(resp.Results, resultToDTO(result))
	}
	resp.TotalAttempted = len(resp.AttemptedChapters)
	resp.TotalPassed = len(resp.PassedChapters)

	profile, err := s.profileRepo.FindByUserID(userID)
	if err == nil {
		resp.Profile = ProfileToDTO(profile)
		resp.AvailableChapters = AvailableChapters(resp.Profile.Chapters)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Dashboard: profile read failed")
	}

	roadmap, err := s.roadmapRepo.FindLatestByUser(userID)
	if err == nil {
		var data model.RoadmapData
		if uErr := json.Unmarshal(roadmap.RoadmapData, &data); uErr == nil {
			resp.Roadmap = &data
		} else {
			log.Warn().Err(uErr).Msg("Malformed roadmap payload")
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Dashboard: roadmap read failed")
	}

	return resp, nil
}

func resultToDTO(result *model.DiagnosticResult) dto.ResultResponse {
	var outcomes []model.QuestionOutcome
	if err := json.Unmarshal(result.Results, &outcomes); err != nil {
		log.Warn().Err(err).Msg("Malformed result outcomes payload")
	}
	scores := map[string]int{}
	totals := map[string]int{}
	if err := json.Unmarshal(result.BucketScores, &scores); err != nil {
		log.Warn().Err(err).Msg("Malformed bucket scores payload")
	}
	if err := json.Unmarshal(result.BucketTotals, &totals); err != nil {
		log.Warn().Err(err).Msg("Malformed bucket totals payload")
	}
	bucketPercentages := make(map[string]int, len(totals))
	for bucket, total := range totals {
		bucketPercentages[bucket] = BucketPercentage(scores[bucket], total)
	}
	return dto.ResultResponse{
		ResultID:          result.ID.String(),
		Chapter:           result.Chapter,
		Percentage:        math.Round(result.Percentage*100) / 100,
		DisplayPercentage: DisplayPercentage(result.Percentage),
		Passed:            result.Passed,
		BucketScores:      scores,
		BucketTotals:      totals,
		BucketPercentages: bucketPercentages,
		TotalCorrect:      result.TotalCorrect,
		TotalQuestions:    result.TotalQuestions,
		Results:           outcomes,
		SubmittedAt:       result.SubmittedAt.UTC().Format(time.RFC3339),
	}
}
