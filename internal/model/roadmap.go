package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RoadmapWeek is one entry in the generated weekly plan.
type RoadmapWeek struct {
	Week      int      `json:"week"`
	Topics    []string `json:"topics"`
	Priority  string   `json:"priority"` // high, medium, low
	Reasoning string   `json:"reasoning"`
}

// RoadmapData is the payload stored in Roadmap.RoadmapData.
type RoadmapData struct {
	WeeklyRoadmap       []RoadmapWeek `json:"weekly_roadmap"`
	EstimatedCompletion string        `json:"estimated_completion"`
	FocusAreas          []string      `json:"focus_areas"`
}

// Roadmap rows accumulate per user; the newest one is the active roadmap.
type Roadmap struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	RoadmapData datatypes.JSON `json:"roadmap_data" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at"`
}
