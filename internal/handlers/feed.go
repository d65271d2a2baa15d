package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"study-mcq-backend/internal/models"
	"study-mcq-backend/internal/supabase"
)

const (
	defaultFeedPageSize = 8
	maxFeedPageSize     = 50
)

type FeedHandler struct {
	store *supabase.Store
}

func NewFeedHandler(store *supabase.Store) *FeedHandler {
	return &FeedHandler{
		store: store,
	}
}

// GetFeed godoc
// @Summary     Read the question feed
// @Description Returns a page of generated questions, newest first. The mobile feed scrolls through this with increasing offsets.
// @Tags        feed
// @Produce     json
// @Security    Bearer
// @Param       limit query int false "Page size (default 8, max 50)"
// @Param       offset query int false "Items to skip"
// @Success     200 {object} models.FeedResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /mcqs [get]
func (h *FeedHandler) GetFeed(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultFeedPageSize)))
	if err != nil || limit <= 0 {
		limit = defaultFeedPageSize
	}
	if limit > maxFeedPageSize {
		limit = maxFeedPageSize
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	mcqs, err := h.store.ListMCQs(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load feed",
			Message: err.Error(),
		})
		return
	}
	if mcqs == nil {
		mcqs = []models.MCQ{}
	}

	c.JSON(http.StatusOK, models.FeedResponse{MCQs: mcqs})
}
