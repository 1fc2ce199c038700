package repository

import (
	"github.com/google/uuid"
	"github.com/techmilsolutions/chemmentor/internal/model"
	"gorm.io/gorm"
)

type RoadmapRepository interface {
	Create(roadmap *model.Roadmap) error
	FindLatestByUser(userID uuid.UUID) (*model.Roadmap, error)
}

type roadmapRepository struct {
	db *gorm.DB
}

func NewRoadmapRepository(db *gorm.DB) RoadmapRepository {
	return &roadmapRepository{db: db}
}

func (r *roadmapRepository) Create(roadmap *model.Roadmap) error {
	return r.db.Create(roadmap).Error
}

// FindLatestByUser returns the newest roadmap row; older rows are kept but
// superseded (regeneration replaces by shadowing, not deletion).
func (r *roadmapRepository) FindLatestByUser(userID uuid.UUID) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&roadmap).Error
	if err != nil {
		return nil, err
	}
	return &roadmap, nil
}
