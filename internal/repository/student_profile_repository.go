package repository

import (
	"github.com/google/uuid"
	"github.com/techmilsolutions/chemmentor/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentProfileRepository interface {
	Upsert(profile *model.StudentProfile) (*model.StudentProfile, error)
	FindByUserID(userID uuid.UUID) (*model.StudentProfile, error)
}

type studentProfileRepository struct {
	db *gorm.DB
}

func NewStudentProfileRepository(db *gorm.DB) StudentProfileRepository {
	return &studentProfileRepository{db: db}
}

// Upsert writes the whole profile in one statement (last write wins) and
// reads the row back so callers can verify what was actually persisted.
func (r *studentProfileRepository) Upsert(profile *model.StudentProfile) (*model.StudentProfile, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(profile).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUserID(profile.UserID)
}

func (r *studentProfileRepository) FindByUserID(userID uuid.UUID) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	if err := r.db.First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
