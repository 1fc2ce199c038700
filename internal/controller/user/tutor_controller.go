package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/service"
)

type TutorController struct {
	tutorSvc service.TutorService
}

func NewTutorController(tutorSvc service.TutorService) *TutorController {
	return &TutorController{tutorSvc: tutorSvc}
}

// AITutor godoc
// @Summary Interact with the AI chemistry tutor
// @Description Three modes against a chapter's source material: teach explains the chapter, question answers a student question grounded in the sources, mcq generates a difficulty-tuned practice batch. The response always carries the {status, mode, chapter, data, error} envelope; mode failures are reported inside it with status "error".
// @Tags tutor
// @Accept json
// @Produce json
// @Param request body dto.TutorRequest true "Chapter, mode, and mode-specific fields"
// @Success 200 {object} dto.TutorResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Router /ai-tutor [post]
func (ctrl *TutorController) AITutor(c *gin.Context) {
	var req dto.TutorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp := ctrl.tutorSvc.Handle(c.Request.Context(), &req)
	status := http.StatusOK
	if resp.Status == "error" {
		status = http.StatusBadRequest
	}
	c.JSON(status, resp)
}
