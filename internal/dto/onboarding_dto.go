package dto

// OnboardingRequest carries the full five-step questionnaire in one write.
// Step-by-step gating is validated server-side; partial submissions are
// rejected with the first failing step's message.
type OnboardingRequest struct {
	StudentType            string            `json:"student_type"`
	StudiedChemistryBefore *bool             `json:"studied_chemistry_before"`
	ConfidenceLevel        string            `json:"confidence_level"`
	DifficultAreas         []string          `json:"difficult_areas"`
	Chapters               map[string]string `json:"chapters"`
	TargetGrade            string            `json:"target_grade"`
	StudyHours             string            `json:"study_hours"`
	ExamSession            string            `json:"exam_session"`
}

type OnboardingStatusResponse struct {
	OnboardingCompleted bool `json:"onboarding_completed"`
}

type StudentProfileResponse struct {
	UserID                 string            `json:"user_id"`
	StudentType            string            `json:"student_type"`
	StudiedChemistryBefore *bool             `json:"studied_chemistry_before"`
	ConfidenceLevel        string            `json:"confidence_level"`
	DifficultAreas         []string          `json:"difficult_areas"`
	Chapters               map[string]string `json:"chapters"`
	TargetGrade            string            `json:"target_grade"`
	StudyHours             string            `json:"study_hours"`
	ExamSession            string            `json:"exam_session"`
	OnboardingCompleted    bool              `json:"onboarding_completed"`
}
