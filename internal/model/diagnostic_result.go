package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuestionOutcome is the per-question grading record inside a result.
type QuestionOutcome struct {
	QuestionID    string `json:"question_id"`
	Question      string `json:"question"`
	Bucket        string `json:"bucket"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Marks         int    `json:"marks"`
}

// DiagnosticResult is the one submitted outcome per diagnostic. Its existence
// for a (user, chapter) pair blocks generating a fresh diagnostic there.
type DiagnosticResult struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index:idx_results_user_chapter"`
	DiagnosticID   uuid.UUID      `json:"diagnostic_id" gorm:"type:uuid;not null"`
	Chapter        string         `json:"chapter" gorm:"not null;index:idx_results_user_chapter"`
	Answers        datatypes.JSON `json:"answers" gorm:"type:jsonb"`
	Results        datatypes.JSON `json:"results" gorm:"type:jsonb"`
	BucketScores   datatypes.JSON `json:"bucket_scores" gorm:"type:jsonb"`
	BucketTotals   datatypes.JSON `json:"bucket_totals" gorm:"type:jsonb"`
	TotalCorrect   int            `json:"total_correct"`
	TotalQuestions int            `json:"total_questions"`
	Percentage     float64        `json:"percentage"`
	Passed         bool           `json:"passed"`
	SubmittedAt    time.Time      `json:"submitted_at"`
}
