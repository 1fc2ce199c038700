package service

import (
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

// Wizard steps, validated in order. Forward navigation in the UI mirrors
// these same predicates; the server re-checks all of them at completion.
const onboardingSteps = 5

type OnboardingService interface {
	ValidateStep(step int, form *dto.OnboardingRequest) error
	Complete(userID uuid.UUID, form *dto.OnboardingRequest) (*dto.StudentProfileResponse, error)
	Status(userID uuid.UUID) bool
	Profile(userID uuid.UUID) (*model.StudentProfile, error)
}

type onboardingService struct {
	profileRepo repository.StudentProfileRepository
}

func NewOnboardingService(profileRepo repository.StudentProfileRepository) OnboardingService {
	return &onboardingService{profileRepo: profileRepo}
}

// ValidateStep applies the completeness predicate for one wizard step.
func (s *onboardingService) ValidateStep(step int, form *dto.OnboardingRequest) error {
	switch step {
	case 1:
		if form.StudentType == "" || form.StudiedChemistryBefore == nil {
			return errors.New("student type and prior study answer are required")
		}
	case 2:
		if form.ConfidenceLevel == "" || len(form.DifficultAreas) == 0 {
			return errors.New("confidence level and at least one difficult area are required")
		}
	case 3:
		if len(form.Chapters) == 0 {
			return errors.New("at least one chapter must be classified")
		}
		for chapter, status := range form.Chapters {
			switch status {
			case model.ChapterStatusGood, model.ChapterStatusWeak, model.ChapterStatusNotStudied:
			default:
				return fmt.Errorf("invalid status %q for chapter %q", status, chapter)
			}
		}
	case 4:
		if form.TargetGrade == "" || form.StudyHours == "" {
			return errors.New("target grade and study hours are required")
		}
	case 5:
		if form.ExamSession == "" {
			return errors.New("exam session is required")
		}
	default:
		return fmt.Errorf("unknown onboarding step %d", step)
	}
	return nil
}

// Complete validates every step, upserts the whole profile with
// completed=true, and verifies the written flag echoes back true before
// reporting success.
func (s *onboardingService) Complete(userID uuid.UUID, form *dto.OnboardingRequest) (*dto.StudentProfileResponse, error) {
	for step := 1; step <= onboardingSteps; step++ {
		if err := s.ValidateStep(step, form); err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
	}

	areasJSON, err := json.Marshal(form.DifficultAreas)
	if err != nil {
		return nil, fmt.Errorf("error encoding difficult areas: %w", err)
	}
	chapters := make(datatypes.JSONMap, len(form.Chapters))
	for chapter, status := range form.Chapters {
		chapters[chapter] = status
	}

	profile := &model.StudentProfile{
		UserID:                 userID,
		StudentType:            form.StudentType,
		StudiedChemistryBefore: form.StudiedChemistryBefore,
		ConfidenceLevel:        form.ConfidenceLevel,
		DifficultAreas:         datatypes.JSON(areasJSON),
		Chapters:               chapters,
		TargetGrade:            form.TargetGrade,
		StudyHours:             form.StudyHours,
		ExamSession:            form.ExamSession,
		OnboardingCompleted:    true,
	}

	written, err := s.profileRepo.Upsert(profile)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Onboarding: profile upsert failed")
		return nil, errors.New("error saving your information. Please try again")
	}
	if written == nil || !written.OnboardingCompleted {
		return nil, errors.New("failed to update onboarding status")
	}
	return ProfileToDTO(written), nil
}

// Status reports whether onboarding finished. A missing row is false, and any
// other read failure is logged and coerced to false rather than surfaced;
// navigation must never be blocked by this lookup.
func (s *onboardingService) Status(userID uuid.UUID) bool {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("Error checking onboarding status")
		}
		return false
	}
	return profile.OnboardingCompleted
}

func (s *onboardingService) Profile(userID uuid.UUID) (*model.StudentProfile, error) {
	return s.profileRepo.FindByUserID(userID)
}

// ProfileToDTO flattens the stored JSON columns back into typed fields.
func ProfileToDTO(profile *model.StudentProfile) *dto.StudentProfileResponse {
	var areas []string
	if len(profile.DifficultAreas) > 0 {
		if err := json.Unmarshal(profile.DifficultAreas, &areas); err != nil {
			log.Warn().Err(err).Msg("Malformed difficult_areas payload")
		}
	}
	chapters := make(map[string]string, len(profile.Chapters))
	for chapter, status := range profile.Chapters {
		if s, ok := status.(string); ok {
			chapters[chapter] = s
		}
	}
	return &dto.StudentProfileResponse{
		UserID:                 profile.UserID.String(),
		StudentType:            profile.StudentType,
		StudiedChemistryBefore: profile.StudiedChemistryBefore,
		ConfidenceLevel:        profile.ConfidenceLevel,
		DifficultAreas:         areas,
		Chapters:               chapters,
		TargetGrade:            profile.TargetGrade,
		StudyHours:             profile.StudyHours,
		ExamSession:            profile.ExamSession,
		OnboardingCompleted:    profile.OnboardingCompleted,
	}
}

// AvailableChapters derives which chapters may be offered for diagnostics:
// only those the student marked good or weak. Pure derivation, no caching.
func AvailableChapters(chapters map[string]string) []string {
	var available []string
	for chapter, status := range chapters {
		if status == model.ChapterStatusGood || status == model.ChapterStatusWeak {
			available = append(available, chapter)
		}
	}
	return available
}
