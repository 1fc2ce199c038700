package repository

import (
	"github.com/google/uuid"
	"github.com/techmilsolutions/chemmentor/internal/model"
	"gorm.io/gorm"
)

type ResultRepository interface {
	Create(result *model.DiagnosticResult) error
	FindByUserAndChapter(userID uuid.UUID, chapter string) (*model.DiagnosticResult, error)
	FindAllByUser(userID uuid.UUID) ([]model.DiagnosticResult, error)
}

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Create(result *model.DiagnosticResult) error {
	return r.db.Create(result).Error
}

func (r *resultRepository) FindByUserAndChapter(userID uuid.UUID, chapter string) (*model.DiagnosticResult, error) {
	var result model.DiagnosticResult
	err := r.db.Where("user_id = ? AND chapter = ?", userID, chapter).
		Order("submitted_at DESC").
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *resultRepository) FindAllByUser(userID uuid.UUID) ([]model.DiagnosticResult, error) {
	var results []model.DiagnosticResult
	err := r.db.Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&results).Error
	return results, err
}
