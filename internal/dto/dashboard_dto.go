package dto

import "github.com/techmilsolutions/chemmentor/internal/model"

type DashboardResponse struct {
	UserID            string                  `json:"user_id"`
	AttemptedChapters []string                `json:"attempted_chapters"`
	PassedChapters    []string                `json:"passed_chapters"`
	AvailableChapters []string                `json:"available_chapters"`
	TotalAttempted    int                     `json:"total_attempted"`
	TotalPassed       int                     `json:"total_passed"`
	Results           []ResultResponse        `json:"results"`
	Profile           *StudentProfileResponse `json:"profile"`
	Roadmap           *model.RoadmapData      `json:"roadmap"`
}

type GenerateRoadmapRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type GenerateRoadmapResponse struct {
	RoadmapID string             `json:"roadmap_id"`
	Roadmap   *model.RoadmapData `json:"roadmap"`
}
