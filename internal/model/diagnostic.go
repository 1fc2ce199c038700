package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Question buckets used for per-category scoring.
const (
	BucketBasic       = "Basic"
	BucketConceptual  = "Conceptual"
	BucketApplication = "Application"
)

// DiagnosticQuestion is one MCQ inside a diagnostic's test payload.
// Index order within the payload is the question identity used by answers.
type DiagnosticQuestion struct {
	Bucket   string   `json:"bucket"`
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
	Marks    int      `json:"marks"`
}

// DiagnosticTest is the generated payload stored in Diagnostic.TestData.
type DiagnosticTest struct {
	Chapter        string               `json:"chapter"`
	DiagnosticTest []DiagnosticQuestion `json:"diagnostic_test"`
}

// Diagnostic is at most one unsubmitted timed test per (user, chapter).
// CreatedAt is the countdown epoch: remaining time is always derived from it,
// never from a client clock.
type Diagnostic struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index:idx_diagnostics_user_chapter"`
	Chapter   string         `json:"chapter" gorm:"not null;index:idx_diagnostics_user_chapter"`
	TestData  datatypes.JSON `json:"test_data" gorm:"type:jsonb"`
	TimeLimit int            `json:"time_limit" gorm:"not null;default:30"`
	CreatedAt time.Time      `json:"created_at"`
}
