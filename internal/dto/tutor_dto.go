package dto

// TutorRequest selects one of the tutor modes: teach, question, mcq.
type TutorRequest struct {
	Chapter    string `json:"chapter" binding:"required"`
	Mode       string `json:"mode" binding:"required"`
	Question   string `json:"question"`
	Difficulty string `json:"difficulty"`
	MCQCount   int    `json:"mcq_count"`
}

type TutorResponse struct {
	Status  string         `json:"status"`
	Mode    string         `json:"mode"`
	Chapter string         `json:"chapter"`
	Data    map[string]any `json:"data"`
	Error   string         `json:"error,omitempty"`
}
