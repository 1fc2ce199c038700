package dto

// Session endpoints drive the timed attempt lifecycle server-side.

type SessionStartRequest struct {
	Chapter string `json:"chapter" binding:"required"`
}

type SessionAnswerRequest struct {
	Chapter    string `json:"chapter" binding:"required"`
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

type SessionSubmitRequest struct {
	Chapter string `json:"chapter" binding:"required"`
}

type SessionStateResponse struct {
	State          string             `json:"state"`
	DiagnosticID   string             `json:"diagnostic_id,omitempty"`
	Chapter        string             `json:"chapter"`
	RemainingSecs  int                `json:"remaining_seconds"`
	TotalQuestions int                `json:"total_questions"`
	AnsweredCount  int                `json:"answered_count"`
	Answers        map[string]string  `json:"answers,omitempty"`
	IsExisting     bool               `json:"is_existing,omitempty"`
	ResultID       string             `json:"result_id,omitempty"`
}
