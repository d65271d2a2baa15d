package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"study-mcq-backend/internal/handlers"
	"study-mcq-backend/internal/supabase"
)

func newUploadRouter(t *testing.T, backend http.Handler) (*gin.Engine, *httptest.Server) {
	t.Helper()
	store, server := newStubStore(t, backend)

	storageClient, err := supabase.NewStorageClient(server.URL, "service-key", "study")
	if err != nil {
		t.Fatalf("failed to create storage client: %v", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/upload", handlers.NewUploadHandler(storageClient, store).Upload)
	return router, server
}

func multipartBody(t *testing.T, fieldName, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + fieldName + `"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	part.Write([]byte(content))
	writer.Close()

	return &buf, writer.FormDataContentType()
}

func TestUploadHandler_Success(t *testing.T) {
	var uploadedPath string
	var fileRowInserted bool

	router, _ := newUploadRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/storage/v1/object/study/uploads/"):
			uploadedPath = strings.TrimPrefix(r.URL.Path, "/storage/v1/object/study/")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"Key":"study/` + uploadedPath + `"}`))
		case r.URL.Path == "/rest/v1/files":
			fileRowInserted = true
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`[{"id":"22222222-2222-2222-2222-222222222222","storage_path":"uploads/x.pdf","public_url":"http://x/uploads/x.pdf","mime_type":"application/pdf","created_at":"2025-01-01T00:00:00Z"}]`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	body, contentType := multipartBody(t, "file", "notes.pdf", "application/pdf", "%PDF-1.4 content")
	req, _ := http.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, fileRowInserted)
	assert.True(t, strings.HasPrefix(uploadedPath, "uploads/"))
	assert.True(t, strings.HasSuffix(uploadedPath, ".pdf"))
	assert.Contains(t, w.Body.String(), `"storage_path"`)
}

func TestUploadHandler_NoFile(t *testing.T) {
	router, _ := newUploadRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called when no file is uploaded")
	}))

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("note", "no file here")
	writer.Close()

	req, _ := http.NewRequest("POST", "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no file uploaded")
}

func TestUploadHandler_AlternateFieldName(t *testing.T) {
	router, _ := newUploadRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/storage/v1/") {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"Key":"study/uploads/x.png"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":"22222222-2222-2222-2222-222222222222","storage_path":"uploads/x.png","public_url":"http://x/uploads/x.png","mime_type":"image/png","created_at":"2025-01-01T00:00:00Z"}]`))
	}))

	body, contentType := multipartBody(t, "document", "scan.png", "image/png", "png-bytes")
	req, _ := http.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
