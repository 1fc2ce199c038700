package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Chapter statuses recorded during onboarding.
const (
	ChapterStatusGood       = "good"
	ChapterStatusWeak       = "weak"
	ChapterStatusNotStudied = "not_studied"
)

// StudentProfile holds the onboarding questionnaire for one user.
// Written as a whole (upsert) when the wizard completes; the chapter map
// drives which diagnostics the dashboard offers.
type StudentProfile struct {
	UserID                  uuid.UUID         `json:"user_id" gorm:"type:uuid;primaryKey"`
	StudentType             string            `json:"student_type"`
	StudiedChemistryBefore  *bool             `json:"studied_chemistry_before"`
	ConfidenceLevel         string            `json:"confidence_level"`
	DifficultAreas          datatypes.JSON    `json:"difficult_areas" gorm:"type:jsonb"`
	Chapters                datatypes.JSONMap `json:"chapters" gorm:"type:jsonb"`
	TargetGrade             string            `json:"target_grade"`
	StudyHours              string            `json:"study_hours"`
	ExamSession             string            `json:"exam_session"`
	OnboardingCompleted     bool              `json:"onboarding_completed" gorm:"not null;default:false"`
	CreatedAt               time.Time         `json:"created_at"`
	UpdatedAt               time.Time         `json:"updated_at"`
}
