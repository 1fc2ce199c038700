package repository

import (
	"github.com/google/uuid"
	"github.com/techmilsolutions/chemmentor/internal/model"
	"gorm.io/gorm"
)

type DiagnosticRepository interface {
	Create(diagnostic *model.Diagnostic) error
	FindByID(id uuid.UUID) (*model.Diagnostic, error)
	FindByUserAndChapter(userID uuid.UUID, chapter string) (*model.Diagnostic, error)
}

type diagnosticRepository struct {
	db *gorm.DB
}

func NewDiagnosticRepository(db *gorm.DB) DiagnosticRepository {
	return &diagnosticRepository{db: db}
}

func (r *diagnosticRepository) Create(diagnostic *model.Diagnostic) error {
	return r.db.Create(diagnostic).Error
}

func (r *diagnosticRepository) FindByID(id uuid.UUID) (*model.Diagnostic, error) {
	var diagnostic model.Diagnostic
	if err := r.db.First(&diagnostic, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &diagnostic, nil
}

func (r *diagnosticRepository) FindByUserAndChapter(userID uuid.UUID, chapter string) (*model.Diagnostic, error) {
	var diagnostic model.Diagnostic
	err := r.db.Where("user_id = ? AND chapter = ?", userID, chapter).
		Order("created_at DESC").
		First(&diagnostic).Error
	if err != nil {
		return nil, err
	}
	return &diagnostic, nil
}
