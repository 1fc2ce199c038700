package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/model"
	"github.com/techmilsolutions/chemmentor/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("Student profile not found")

type RoadmapService interface {
	Generate(ctx context.Context, userID uuid.UUID) (*dto.GenerateRoadmapResponse, error)
}

type roadmapService struct {
	profileRepo repository.StudentProfileRepository
	resultRepo  repository.ResultRepository
	roadmapRepo repository.RoadmapRepository
	gemini      GeminiLLMService
}

func NewRoadmapService(
	profileRepo repository.StudentProfileRepository,
	resultRepo repository.ResultRepository,
	roadmapRepo repository.RoadmapRepository,
	gemini GeminiLLMService,
) RoadmapService {
	return &roadmapService{
		profileRepo: profileRepo,
		resultRepo:  resultRepo,
		roadmapRepo: roadmapRepo,
		gemini:      gemini,
	}
}

// Generate synthesizes a fresh weekly plan from the profile and every
// diagnostic summary, persisting it as the new active roadmap.
func (s *roadmapService) Generate(ctx context.Context, userID uuid.UUID) (*dto.GenerateRoadmapResponse, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}

	results, err := s.resultRepo.FindAllByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching results: %w", err)
	}

	profileDTO := ProfileToDTO(profile)
	onboarding := map[string]any{
		"student_type":     profileDTO.StudentType,
		"confidence_level": profileDTO.ConfidenceLevel,
		"difficult_areas":  profileDTO.DifficultAreas,
		"target_grade":     profileDTO.TargetGrade,
		"study_hours":      profileDTO.StudyHours,
		"exam_session":     profileDTO.ExamSession,
	}

	diagnostics := make([]map[string]any, 0, len(results))
	for i := range results {
		result := &results[i]
		scores := map[string]int{}
		if err := json.Unmarshal(result.BucketScores, &scores); err != nil {
			log.Warn().Err(err).Msg("Malformed bucket scores payload")
		}
		diagnostics = append(diagnostics, map[string]any{
			"chapter":       result.Chapter,
			"passed":        result.Passed,
			"percentage":    result.Percentage,
			"bucket_scores": scores,
		})
	}

	data, err := s.gemini.GenerateRoadmap(ctx, onboarding, diagnostics)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Roadmap generation failed")
		return nil, err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error encoding roadmap: %w", err)
	}
	roadmap := &model.Roadmap{
		ID:          uuid.New(),
		UserID:      userID,
		RoadmapData: datatypes.JSON(payload),
	}
	if err := s.roadmapRepo.Create(roadmap); err != nil {
		return nil, fmt.Errorf("error saving roadmap: %w", err)
	}

	return &dto.GenerateRoadmapResponse{
		RoadmapID: roadmap.ID.String(),
		Roadmap:   data,
	}, nil
}
