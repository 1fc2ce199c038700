package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/techmilsolutions/chemmentor/internal/model"
	"gorm.io/datatypes"
)

func TestDisplayPercentage(t *testing.T) {
	tests := []struct {
		stored float64
		want   int
	}{
		{0, 0},
		{66.67, 67},
		{66.4, 66},
		{49.5, 50},
		{100, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayPercentage(tt.stored))
	}
}

func TestResultToDTOIncludesDisplayPercentages(t *testing.T) {
	result := &model.DiagnosticResult{
		ID:             uuid.New(),
		Chapter:        "Stoichiometry",
		Results:        datatypes.JSON([]byte(`[]`)),
		BucketScores:   datatypes.JSON([]byte(`{"recall":2,"application":1,"analysis":0}`)),
		BucketTotals:   datatypes.JSON([]byte(`{"recall":3,"application":3,"analysis":0}`)),
		TotalCorrect:   3,
		TotalQuestions: 6,
		Percentage:     66.666,
		Passed:         false,
		SubmittedAt:    time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	resp := resultToDTO(result)

	assert.Equal(t, 66.67, resp.Percentage)
	assert.Equal(t, 67, resp.DisplayPercentage)
	assert.Equal(t, map[string]int{
		"recall":      67,
		"application": 33,
		"analysis":    0,
	}, resp.BucketPercentages)
}

func TestBucketPercentage(t *testing.T) {
	tests := []struct {
		name  string
		score int
		total int
		want  int
	}{
		{"empty bucket", 0, 0, 0},
		{"zero score", 0, 3, 0},
		{"one of three", 1, 3, 33},
		{"two of three", 2, 3, 67},
		{"full", 3, 3, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketPercentage(tt.score, tt.total))
		})
	}
}
