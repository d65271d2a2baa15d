package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"study-mcq-backend/internal/models"
)

// GeneratePipeline is what the handler needs from the generation pipeline.
type GeneratePipeline interface {
	Generate(fileID, jobID string) (string, error)
}

type GenerateHandler struct {
	pipeline GeneratePipeline
}

func NewGenerateHandler(pipeline GeneratePipeline) *GenerateHandler {
	return &GenerateHandler{
		pipeline: pipeline,
	}
}

// Generate godoc
// @Summary     Generate MCQs from an uploaded file
// @Description Creates (or reuses) a job, fetches the file, asks the model for 30 multiple-choice questions and persists them. Poll the job and feed endpoints for results.
// @Tags        generate
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.GenerateRequest true "File to generate from"
// @Success     200 {object} models.GenerateResponse
// @Failure     400 {object} models.GenerateResponse
// @Failure     405 {object} models.GenerateResponse
// @Failure     500 {object} models.GenerateResponse
// @Router      /generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.GenerateResponse{
			OK:    false,
			Error: "invalid request body: " + err.Error(),
		})
		return
	}

	// file_id is required; fail before any side effect.
	if req.FileID == "" {
		c.JSON(http.StatusBadRequest, models.GenerateResponse{
			OK:    false,
			Error: "file_id is required",
		})
		return
	}

	jobID, err := h.pipeline.Generate(req.FileID, req.JobID)
	if err != nil {
		log.Printf("Generation failed for file %s: %v", req.FileID, err)
		c.JSON(http.StatusInternalServerError, models.GenerateResponse{
			OK:    false,
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.GenerateResponse{
		OK:    true,
		JobID: jobID,
	})
}

// MethodNotAllowed answers requests with a known route but the wrong verb
// in the same envelope the generation endpoint uses.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, models.GenerateResponse{
		OK:    false,
		Error: "method not allowed",
	})
}
