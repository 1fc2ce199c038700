package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/model"
)

func completeForm() *dto.OnboardingRequest {
	studied := true
	return &dto.OnboardingRequest{
		StudentType:            "school",
		StudiedChemistryBefore: &studied,
		ConfidenceLevel:        "medium",
		DifficultAreas:         []string{"Organic Chemistry"},
		Chapters: map[string]string{
			"Stoichiometry":   model.ChapterStatusWeak,
			"Acids and Bases": model.ChapterStatusGood,
			"Electrolysis":    model.ChapterStatusNotStudied,
		},
		TargetGrade: "A",
		StudyHours:  "5-10",
		ExamSession: "2027-summer",
	}
}

func TestValidateStepCompleteForm(t *testing.T) {
	svc := NewOnboardingService(nil)
	form := completeForm()
	for step := 1; step <= 5; step++ {
		assert.NoError(t, svc.ValidateStep(step, form), "step %d", step)
	}
}

func TestValidateStepFailures(t *testing.T) {
	svc := NewOnboardingService(nil)

	tests := []struct {
		name   string
		step   int
		mutate func(form *dto.OnboardingRequest)
	}{
		{"step 1 missing student type", 1, func(f *dto.OnboardingRequest) { f.StudentType = "" }},
		{"step 1 missing prior study answer", 1, func(f *dto.OnboardingRequest) { f.StudiedChemistryBefore = nil }},
		{"step 2 missing confidence", 2, func(f *dto.OnboardingRequest) { f.ConfidenceLevel = "" }},
		{"step 2 no difficult areas", 2, func(f *dto.OnboardingRequest) { f.DifficultAreas = nil }},
		{"step 3 no chapters", 3, func(f *dto.OnboardingRequest) { f.Chapters = nil }},
		{"step 3 invalid status", 3, func(f *dto.OnboardingRequest) { f.Chapters["Stoichiometry"] = "unsure" }},
		{"step 4 missing grade", 4, func(f *dto.OnboardingRequest) { f.TargetGrade = "" }},
		{"step 4 missing hours", 4, func(f *dto.OnboardingRequest) { f.StudyHours = "" }},
		{"step 5 missing session", 5, func(f *dto.OnboardingRequest) { f.ExamSession = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := completeForm()
			tt.mutate(form)
			assert.Error(t, svc.ValidateStep(tt.step, form))
		})
	}
}

func TestValidateStepUnknownStep(t *testing.T) {
	svc := NewOnboardingService(nil)
	assert.Error(t, svc.ValidateStep(0, completeForm()))
	assert.Error(t, svc.ValidateStep(6, completeForm()))
}

func TestAvailableChapters(t *testing.T) {
	chapters := map[string]string{
		"Stoichiometry":   model.ChapterStatusWeak,
		"Acids and Bases": model.ChapterStatusGood,
		"Electrolysis":    model.ChapterStatusNotStudied,
	}
	available := AvailableChapters(chapters)

	assert.ElementsMatch(t, []string{"Stoichiometry", "Acids and Bases"}, available)
	assert.NotContains(t, available, "Electrolysis")
}

func TestAvailableChaptersEmpty(t *testing.T) {
	assert.Empty(t, AvailableChapters(nil))
	assert.Empty(t, AvailableChapters(map[string]string{"X": model.ChapterStatusNotStudied}))
}
