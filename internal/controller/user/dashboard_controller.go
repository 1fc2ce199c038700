package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/service"
)

type DashboardController struct {
	dashboardSvc service.DashboardService
}

func NewDashboardController(dashboardSvc service.DashboardService) *DashboardController {
	return &DashboardController{dashboardSvc: dashboardSvc}
}

// GetDashboard godoc
// @Summary Get a student's progress dashboard
// @Description Aggregates every diagnostic result (newest first), attempted and passed chapter sets, the student profile, and the latest roadmap into one snapshot. Missing profile or roadmap are empty fields, not errors.
// @Tags dashboard
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} dto.DashboardResponse
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid user_id"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /dashboard [get]
func (ctrl *DashboardController) GetDashboard(c *gin.Context) {
	userIDStr := c.Query("user_id")
	if userIDStr == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "user_id query parameter is required"})
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user_id format"})
		return
	}

	dashboard, err := ctrl.dashboardSvc.GetDashboard(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userIDStr).Msg("Failed to build dashboard")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
