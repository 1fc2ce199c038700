package repository

import (
	"github.com/techmilsolutions/chemmentor/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChapterRepository interface {
	Upsert(chapter *model.ChemistryChapter) error
	FindByName(chapterName string) (*model.ChemistryChapter, error)
	ListNames() ([]string, error)
	FindAll() ([]model.ChemistryChapter, error)
}

type chapterRepository struct {
	db *gorm.DB
}

func NewChapterRepository(db *gorm.DB) ChapterRepository {
	return &chapterRepository{db: db}
}

func (r *chapterRepository) Upsert(chapter *model.ChemistryChapter) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chapter_name"}},
		UpdateAll: true,
	}).Create(chapter).Error
}

func (r *chapterRepository) FindByName(chapterName string) (*model.ChemistryChapter, error) {
	var chapter model.ChemistryChapter
	if err := r.db.Where("chapter_name = ?", chapterName).First(&chapter).Error; err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (r *chapterRepository) ListNames() ([]string, error) {
	var names []string
	err := r.db.Model(&model.ChemistryChapter{}).
		Order("chapter_name ASC").
		Pluck("chapter_name", &names).Error
	return names, err
}

func (r *chapterRepository) FindAll() ([]model.ChemistryChapter, error) {
	var chapters []model.ChemistryChapter
	if err := r.db.Order("chapter_name ASC").Find(&chapters).Error; err != nil {
		return nil, err
	}
	return chapters, nil
}
