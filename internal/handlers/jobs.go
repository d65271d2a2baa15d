package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"study-mcq-backend/internal/models"
	"study-mcq-backend/internal/supabase"
)

type JobsHandler struct {
	store *supabase.Store
}

func NewJobsHandler(store *supabase.Store) *JobsHandler {
	return &JobsHandler{
		store: store,
	}
}

// GetJob godoc
// @Summary     Poll a generation job
// @Description Returns the job's current status: queued, processing, done or failed.
// @Tags        jobs
// @Produce     json
// @Security    Bearer
// @Param       job_id path string true "Job ID (UUID)"
// @Success     200 {object} models.JobStatusResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /jobs/{job_id} [get]
func (h *JobsHandler) GetJob(c *gin.Context) {
	jobIDStr := c.Param("job_id")
	jobID, err := uuid.Parse(jobIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid job id"})
		return
	}

	job, err := h.store.GetJob(jobID.String())
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "job not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.JobStatusResponse{
		JobID:     job.ID.String(),
		Status:    job.Status,
		UpdatedAt: job.UpdatedAt,
	})
}
