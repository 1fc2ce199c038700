package dto

// ChapterUpsertDTO is for admins loading or replacing chapter source material.
type ChapterUpsertDTO struct {
	ChapterName   string `json:"chapter_name" binding:"required"`
	SyllabusText  string `json:"syllabus_text"`
	PastPaperText string `json:"past_paper_text"`
	AnswerKeyText string `json:"answer_key_text"`
}

type ChapterResponseDTO struct {
	ID          uint   `json:"id"`
	ChapterName string `json:"chapter_name"`
	HasSyllabus bool   `json:"has_syllabus"`
	HasPapers   bool   `json:"has_papers"`
	HasAnswers  bool   `json:"has_answers"`
}
