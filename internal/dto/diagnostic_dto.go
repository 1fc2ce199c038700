package dto

import (
	"github.com/techmilsolutions/chemmentor/internal/model"
)

type DiagnosticRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Chapter string `json:"chapter" binding:"required"`
}

type DiagnosticResponse struct {
	DiagnosticID   string                     `json:"diagnostic_id"`
	Chapter        string                     `json:"chapter"`
	DiagnosticTest []model.DiagnosticQuestion `json:"diagnostic_test"`
	TotalQuestions int                        `json:"total_questions"`
	TimeLimit      int                        `json:"time_limit"`
	CreatedAt      string                     `json:"created_at"`
	IsExisting     bool                       `json:"is_existing"`
}

type SubmitDiagnosticRequest struct {
	UserID       string            `json:"user_id" binding:"required"`
	DiagnosticID string            `json:"diagnostic_id" binding:"required"`
	Answers      map[string]string `json:"answers"`
}

type SubmitDiagnosticResponse struct {
	ResultID       string                  `json:"result_id"`
	Passed         bool                    `json:"passed"`
	Percentage     float64                 `json:"percentage"`
	TotalCorrect   int                     `json:"total_correct"`
	TotalQuestions int                     `json:"total_questions"`
	BucketScores   map[string]int          `json:"bucket_scores"`
	Results        []model.QuestionOutcome `json:"results"`
}

type ResultResponse struct {
	ResultID          string                  `json:"result_id"`
	Chapter           string                  `json:"chapter"`
	Percentage        float64                 `json:"percentage"`
	DisplayPercentage int                     `json:"display_percentage"`
	Passed            bool                    `json:"passed"`
	BucketScores      map[string]int          `json:"bucket_scores"`
	BucketTotals      map[string]int          `json:"bucket_totals"`
	BucketPercentages map[string]int          `json:"bucket_percentages"`
	TotalCorrect      int                     `json:"total_correct"`
	TotalQuestions    int                     `json:"total_questions"`
	Results           []model.QuestionOutcome `json:"results"`
	SubmittedAt       string                  `json:"submitted_at"`
}
