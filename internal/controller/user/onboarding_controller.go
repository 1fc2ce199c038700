package user

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/middleware"
	"github.com/techmilsolutions/chemmentor/internal/service"
)

type OnboardingController struct {
	onboardingSvc service.OnboardingService
}

func NewOnboardingController(onboardingSvc service.OnboardingService) *OnboardingController {
	return &OnboardingController{onboardingSvc: onboardingSvc}
}

// ValidateStep godoc
// @Summary Validate one wizard step
// @Description Checks the forward-gating predicate for a single onboarding step without persisting anything.
// @Tags onboarding
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param step path int true "Step number (1-5)"
// @Param form body dto.OnboardingRequest true "Wizard form so far"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Step incomplete or invalid"
// @Router /onboarding/validate/{step} [post]
func (ctrl *OnboardingController) ValidateStep(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid step number"})
		return
	}

	var req dto.OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := ctrl.onboardingSvc.ValidateStep(step, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Step complete"})
}

// Complete godoc
// @Summary Complete onboarding
// @Description Validates every step and upserts the full student profile with onboarding marked complete.
// @Tags onboarding
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param form body dto.OnboardingRequest true "Full five-step questionnaire"
// @Success 200 {object} dto.StudentProfileResponse
// @Failure 400 {object} dto.ErrorResponse "A step predicate failed"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Profile write failed"
// @Router /onboarding/complete [post]
func (ctrl *OnboardingController) Complete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Not authenticated"})
		return
	}

	var req dto.OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	profile, err := ctrl.onboardingSvc.Complete(user.ID, &req)
	if err != nil {
		if verr := validationError(err); verr != "" {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: verr})
			return
		}
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Onboarding completion failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Status godoc
// @Summary Get onboarding completion status
// @Tags onboarding
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.OnboardingStatusResponse
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Router /onboarding/status [get]
func (ctrl *OnboardingController) Status(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, dto.OnboardingStatusResponse{OnboardingCompleted: ctrl.onboardingSvc.Status(user.ID)})
}

// Profile godoc
// @Summary Get the current user's student profile
// @Tags onboarding
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StudentProfileResponse
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "No profile yet"
// @Router /onboarding/profile [get]
func (ctrl *OnboardingController) Profile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Not authenticated"})
		return
	}

	profile, err := ctrl.onboardingSvc.Profile(user.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Student profile not found"})
		return
	}
	c.JSON(http.StatusOK, service.ProfileToDTO(profile))
}

// validationError maps a step-predicate failure to its message, empty for
// infrastructure errors. Complete wraps predicate failures with "step N:".
func validationError(err error) string {
	if msg := err.Error(); strings.HasPrefix(msg, "step ") {
		return msg
	}
	return ""
}
