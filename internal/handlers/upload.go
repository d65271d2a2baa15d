package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"study-mcq-backend/internal/models"
	"study-mcq-backend/internal/supabase"
)

type UploadHandler struct {
	storageClient *supabase.StorageClient
	store         *supabase.Store
}

func NewUploadHandler(storageClient *supabase.StorageClient, store *supabase.Store) *UploadHandler {
	return &UploadHandler{
		storageClient: storageClient,
		store:         store,
	}
}

// Upload godoc
// @Summary     Upload a source document
// @Description Stores a PDF or image in the study bucket and records its metadata row. The returned file id is what the generate endpoint consumes.
// @Tags        upload
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       file formData file true "Document or image to generate questions from"
// @Success     200 {object} models.File
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	form := c.Request.MultipartForm
	if form == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: "multipart form is nil",
		})
		return
	}

	// Be lenient about the field name, mobile clients disagree on it.
	var file *multipart.FileHeader
	fieldNames := []string{"file", "document", "image", "upload"}
	for _, fieldName := range fieldNames {
		if f := form.File[fieldName]; len(f) > 0 {
			file = f[0]
			break
		}
	}
	if file == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no file uploaded",
			Message: fmt.Sprintf("please provide a file with one of these field names: %v", fieldNames),
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to open uploaded file",
			Message: err.Error(),
		})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to read uploaded file",
			Message: err.Error(),
		})
		return
	}

	ext := strings.ToLower(path.Ext(file.Filename))
	if ext == "" {
		ext = ".bin"
	}
	storagePath := fmt.Sprintf("uploads/%s%s", uuid.New().String(), ext)
	contentType := file.Header.Get("Content-Type")

	publicURL, err := h.storageClient.UploadFile(storagePath, contentType, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to store file",
			Message: err.Error(),
		})
		return
	}

	fileRow, err := h.store.CreateFile(storagePath, publicURL, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to record file metadata",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, fileRow)
}
