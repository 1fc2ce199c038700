package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/model"
	"github.com/techmilsolutions/chemmentor/internal/repository"
)

// ChapterController manages the chemistry chapter content store that feeds
// diagnostic generation and the AI tutor.
type ChapterController struct {
	chapterRepo repository.ChapterRepository
}

func NewChapterController(chapterRepo repository.ChapterRepository) *ChapterController {
	return &ChapterController{chapterRepo: chapterRepo}
}

// UpsertChapter godoc
// @Summary Create or replace a chapter's source material
// @Description Loads syllabus, past paper, and answer key text for one chapter. An existing chapter of the same name is replaced.
// @Tags admin
// @Accept json
// @Produce json
// @Param chapter body dto.ChapterUpsertDTO true "Chapter content"
// @Success 200 {object} dto.ChapterResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 500 {object} dto.ErrorResponse "Storage failure"
// @Router /admin/chapters [post]
func (ctrl *ChapterController) UpsertChapter(c *gin.Context) {
	var req dto.ChapterUpsertDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	var chapter model.ChemistryChapter
	if err := copier.Copy(&chapter, &req); err != nil {
		log.Error().Err(err).Msg("Failed to map chapter request")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to process chapter content"})
		return
	}

	if err := ctrl.chapterRepo.Upsert(&chapter); err != nil {
		log.Error().Err(err).Str("chapter", req.ChapterName).Msg("Failed to store chapter content")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to store chapter content"})
		return
	}

	stored, err := ctrl.chapterRepo.FindByName(req.ChapterName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Chapter stored but could not be read back"})
		return
	}
	c.JSON(http.StatusOK, chapterToDTO(stored))
}

// ListChapters godoc
// @Summary List stored chapters and their content coverage
// @Tags admin
// @Produce json
// @Success 200 {array} dto.ChapterResponseDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/chapters [get]
func (ctrl *ChapterController) ListChapters(c *gin.Context) {
	chapters, err := ctrl.chapterRepo.FindAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list chapters")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to retrieve chapters"})
		return
	}

	resp := make([]dto.ChapterResponseDTO, 0, len(chapters))
	for i := range chapters {
		resp = append(resp, chapterToDTO(&chapters[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func chapterToDTO(chapter *model.ChemistryChapter) dto.ChapterResponseDTO {
	return dto.ChapterResponseDTO{
		ID:          chapter.ID,
		ChapterName: chapter.ChapterName,
		HasSyllabus: chapter.SyllabusText != "",
		HasPapers:   chapter.PastPaperText != "",
		HasAnswers:  chapter.AnswerKeyText != "",
	}
}
