package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/middleware"
	"github.com/techmilsolutions/chemmentor/internal/service"
	"github.com/techmilsolutions/chemmentor/internal/session"
)

// diagnosticSubmitter adapts the grading service to the session manager's
// Submitter so the session package stays free of service imports.
type diagnosticSubmitter struct {
	diagnosticSvc service.DiagnosticService
}

func NewDiagnosticSubmitter(diagnosticSvc service.DiagnosticService) session.Submitter {
	return &diagnosticSubmitter{diagnosticSvc: diagnosticSvc}
}

func (s *diagnosticSubmitter) Submit(key session.Key, diagnosticID uuid.UUID, answers map[string]string) (string, error) {
	resp, err := s.diagnosticSvc.Submit(key.UserID, diagnosticID, answers)
	if err != nil {
		return "", err
	}
	return resp.ResultID, nil
}

// SessionController drives the timed attempt lifecycle. All endpoints act on
// the authenticated user's session for the named chapter.
type SessionController struct {
	manager       *session.Manager
	diagnosticSvc service.DiagnosticService
}

func NewSessionController(manager *session.Manager, diagnosticSvc service.DiagnosticService) *SessionController {
	return &SessionController{manager: manager, diagnosticSvc: diagnosticSvc}
}

func snapshotToDTO(snap session.Snapshot) dto.SessionStateResponse {
	resp := dto.SessionStateResponse{
		State:          string(snap.State),
		Chapter:        snap.Chapter,
		RemainingSecs:  snap.Remaining,
		TotalQuestions: snap.TotalQuestions,
		AnsweredCount:  snap.AnsweredCount,
		Answers:        snap.Answers,
		IsExisting:     snap.IsExisting,
		ResultID:       snap.ResultID,
	}
	if snap.DiagnosticID != uuid.Nil {
		resp.DiagnosticID = snap.DiagnosticID.String()
	}
	return resp
}

// Start godoc
// @Summary Start or resume a timed diagnostic attempt
// @Description Loads the chapter's diagnostic (generating one when none exists), arms the countdown, and marks the per-chapter start lock. Starting an already-started chapter returns the live session unchanged.
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SessionStartRequest true "Chapter"
// @Success 200 {object} dto.SessionStateResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown chapter or diagnostic already completed"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Router /diagnostic-session/start [post]
func (ctrl *SessionController) Start(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Not authenticated"})
		return
	}
	var req dto.SessionStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	key := session.Key{UserID: currentUser.ID, Chapter: req.Chapter}
	ctx := c.Request.Context()

	snap, err := ctrl.manager.Start(key, func() (*session.StartInfo, error) {
		diag, err := ctrl.diagnosticSvc.Generate(ctx, key.UserID, key.Chapter)
		if err != nil {
			return nil, err
		}
		return startInfoFromDiagnostic(diag)
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrAlreadyCompleted) || errors.Is(err, service.ErrChapterUnavailable) {
			status = http.StatusBadRequest
		}
		c.JSON(status, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshotToDTO(snap))
}

// startInfoFromDiagnostic maps the stored diagnostic into countdown inputs.
// A record missing its id or creation timestamp cannot anchor a countdown.
func startInfoFromDiagnostic(diag *dto.DiagnosticResponse) (*session.StartInfo, error) {
	id, err := uuid.Parse(diag.DiagnosticID)
	if err != nil {
		return nil, errors.New("diagnostic record is missing an identifier")
	}
	createdAt, err := parseCreatedAt(diag.CreatedAt)
	if err != nil {
		return nil, errors.New("diagnostic record has an invalid creation time")
	}
	return &session.StartInfo{
		DiagnosticID:   id,
		CreatedAt:      createdAt,
		TimeLimit:      diag.TimeLimit,
		TotalQuestions: diag.TotalQuestions,
		IsExisting:     diag.IsExisting,
	}, nil
}

func parseCreatedAt(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

// Answer godoc
// @Summary Record one answer choice
// @Description Overwrites the choice for one question index. Only single letters A-D are accepted. Answers outside an in-progress session are ignored.
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SessionAnswerRequest true "Chapter, question index, and choice"
// @Success 200 {object} dto.SessionStateResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid choice"
// @Failure 404 {object} dto.ErrorResponse "No active session"
// @Router /diagnostic-session/answer [post]
func (ctrl *SessionController) Answer(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Not authenticated"})
		return
	}
	var req dto.SessionAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	key := session.Key{UserID: currentUser.ID, Chapter: req.Chapter}
	snap, err := ctrl.manager.Answer(key, req.QuestionID, req.Answer)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshotToDTO(snap))
}

// Submit godoc
// @Summary Submit the attempt for grading
// @Description Grades whatever answers are recorded; incomplete sets are allowed. A submission already underway makes this a no-op. A failed submission leaves the session retryable without releasing the start lock.
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SessionSubmitRequest true "Chapter"
// @Success 200 {object} dto.SessionStateResponse
// @Failure 404 {object} dto.ErrorResponse "No active session"
// @Failure 500 {object} dto.ErrorResponse "Grading failed; retry allowed"
// @Router /diagnostic-session/submit [post]
func (ctrl *SessionController) Submit(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Not authenticated"})
		return
	}
	var req dto.SessionSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	key := session.Key{UserID: currentUser.ID, Chapter: req.Chapter}
	snap, err := ctrl.manager.Submit(key)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshotToDTO(snap))
}

// State godoc
// @Summary Read the live attempt state for a chapter
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param chapter query string true "Chapter name"
// @Success 200 {object} dto.SessionStateResponse
// @Failure 400 {object} dto.ErrorResponse "Missing chapter"
// @Router /diagnostic-session/state [get]
func (ctrl *SessionController) State(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Not authenticated"})
		return
	}
	chapter := c.Query("chapter")
	if chapter == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "chapter query parameter is required"})
		return
	}

	key := session.Key{UserID: currentUser.ID, Chapter: chapter}
	snap, _ := ctrl.manager.State(key)
	c.JSON(http.StatusOK, snapshotToDTO(snap))
}
