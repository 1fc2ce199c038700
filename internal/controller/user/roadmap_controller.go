package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/service"
)

type RoadmapController struct {
	roadmapSvc service.RoadmapService
}

func NewRoadmapController(roadmapSvc service.RoadmapService) *RoadmapController {
	return &RoadmapController{roadmapSvc: roadmapSvc}
}

// GenerateRoadmap godoc
// @Summary Generate a personalized study roadmap
// @Description Synthesizes a weekly plan from the student profile and every diagnostic summary. Regeneration replaces the active roadmap; reads always return the latest.
// @Tags roadmap
// @Accept json
// @Produce json
// @Param request body dto.GenerateRoadmapRequest true "User ID"
// @Success 200 {object} dto.GenerateRoadmapResponse
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid user_id"
// @Failure 404 {object} dto.ErrorResponse "Student profile not found"
// @Failure 500 {object} dto.ErrorResponse "Generation or storage failure"
// @Router /generate-roadmap [post]
func (ctrl *RoadmapController) GenerateRoadmap(c *gin.Context) {
	var req dto.GenerateRoadmapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user_id format"})
		return
	}

	resp, err := ctrl.roadmapSvc.Generate(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
			return
		}
		log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to generate roadmap")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
