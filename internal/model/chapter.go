package model

import (
	"time"

	"gorm.io/gorm"
)

// ChemistryChapter stores the source material diagnostics and tutoring are
// grounded on. The AI layer only ever sees these three text blobs.
type ChemistryChapter struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	ChapterName   string         `json:"chapter_name" gorm:"not null;uniqueIndex"`
	SyllabusText  string         `json:"syllabus_text" gorm:"type:text"`
	PastPaperText string         `json:"past_paper_text" gorm:"type:text"`
	AnswerKeyText string         `json:"answer_key_text" gorm:"type:text"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
