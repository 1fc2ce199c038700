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

type DiagnosticController struct {
	diagnosticSvc service.DiagnosticService
}

func NewDiagnosticController(diagnosticSvc service.DiagnosticService) *DiagnosticController {
	return &DiagnosticController{diagnosticSvc: diagnosticSvc}
}

// GetChapters godoc
// @Summary List chapters with diagnostic coverage
// @Tags diagnostics
// @Produce json
// @Success 200 {array} string
// @Router /chapters [get]
func (ctrl *DiagnosticController) GetChapters(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.diagnosticSvc.AvailableChapters())
}

// GenerateDiagnostic godoc
// @Summary Generate (or resume) a diagnostic test for a chapter
// @Description Returns the user's unsubmitted diagnostic for the chapter when one exists (is_existing=true), otherwise generates a fresh one from the chapter's source material. A chapter whose result already exists cannot be retaken.
// @Tags diagnostics
// @Accept json
// @Produce json
// @Param request body dto.DiagnosticRequest true "User and chapter"
// @Success 200 {object} dto.DiagnosticResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown chapter or diagnostic already completed"
// @Failure 500 {object} dto.ErrorResponse "Generation or storage failure"
// @Router /generate-diagnostic [post]
func (ctrl *DiagnosticController) GenerateDiagnostic(c *gin.Context) {
	var req dto.DiagnosticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user_id format"})
		return
	}

	resp, err := ctrl.diagnosticSvc.Generate(c.Request.Context(), userID, req.Chapter)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyCompleted) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		log.Error().Err(err).Str("chapter", req.Chapter).Msg("Failed to generate diagnostic")
		status := http.StatusInternalServerError
		if err.Error() == "NO_DATA_AVAILABLE" || errors.Is(err, service.ErrChapterUnavailable) {
			status = http.StatusBadRequest
		}
		c.JSON(status, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDiagnostic godoc
// @Summary Fetch the existing unsubmitted diagnostic for a chapter
// @Tags diagnostics
// @Accept json
// @Produce json
// @Param request body dto.DiagnosticRequest true "User and chapter"
// @Success 200 {object} dto.DiagnosticResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "No existing diagnostic found"
// @Router /get-diagnostic [post]
func (ctrl *DiagnosticController) GetDiagnostic(c *gin.Context) {
	var req dto.DiagnosticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user_id format"})
		return
	}

	resp, err := ctrl.diagnosticSvc.GetExisting(userID, req.Chapter)
	if err != nil {
		if errors.Is(err, service.ErrNoDiagnostic) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
			return
		}
		if errors.Is(err, service.ErrChapterUnavailable) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		log.Error().Err(err).Str("chapter", req.Chapter).Msg("Failed to fetch diagnostic")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitDiagnostic godoc
// @Summary Grade and store a diagnostic submission
// @Description Answers are keyed by question index with single-letter choices. Unanswered questions count as wrong. Passing requires every attempted bucket to score above zero and at least half.
// @Tags diagnostics
// @Accept json
// @Produce json
// @Param submission body dto.SubmitDiagnosticRequest true "User, diagnostic id, and answers"
// @Success 200 {object} dto.SubmitDiagnosticResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Diagnostic not found"
// @Failure 500 {object} dto.ErrorResponse "Grading or storage failure"
// @Router /submit-diagnostic [post]
func (ctrl *DiagnosticController) SubmitDiagnostic(c *gin.Context) {
	var req dto.SubmitDiagnosticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user_id format"})
		return
	}
	diagnosticID, err := uuid.Parse(req.DiagnosticID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid diagnostic_id format"})
		return
	}

	resp, err := ctrl.diagnosticSvc.Submit(userID, diagnosticID, req.Answers)
	if err != nil {
		if errors.Is(err, service.ErrDiagnosticNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
			return
		}
		log.Error().Err(err).Str("diagnostic_id", req.DiagnosticID).Msg("Failed to submit diagnostic")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
