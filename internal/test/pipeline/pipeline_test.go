package pipeline_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"study-mcq-backend/internal/models"
	"study-mcq-backend/internal/pipeline"
)

const threeItemArray = `[
	{"question":"A?","options":["1","2","3","4"],"answer_index":0},
	{"question":"B?","options":["1","2","3","4"],"answer_index":1},
	{"question":"C?","options":["1","2","3","4"],"answer_index":2}
]`

type insertedMCQ struct {
	fileID   string
	question models.GeneratedQuestion
}

type fakeStore struct {
	jobID         uuid.UUID
	createdJobs   int
	createJobErr  error
	statusUpdates []models.JobStatus
	updateErr     error
	files         map[string]*models.File
	inserted      []insertedMCQ
	insertAttempt int
	failInsertAt  map[int]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobID: uuid.New(),
		files: make(map[string]*models.File),
	}
}

func (f *fakeStore) CreateJob(fileID string) (*models.Job, error) {
	if f.createJobErr != nil {
		return nil, f.createJobErr
	}
	f.createdJobs++
	return &models.Job{ID: f.jobID, Status: models.JobStatusQueued}, nil
}

func (f *fakeStore) UpdateJobStatus(jobID string, status models.JobStatus) error {
	f.statusUpdates = append(f.statusUpdates, status)
	return f.updateErr
}

func (f *fakeStore) GetFile(fileID string) (*models.File, error) {
	file, ok := f.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s not found", fileID)
	}
	return file, nil
}

func (f *fakeStore) CreateMCQ(fileID string, q models.GeneratedQuestion) error {
	attempt := f.insertAttempt
	f.insertAttempt++
	if f.failInsertAt[attempt] {
		return fmt.Errorf("insert rejected")
	}
	f.inserted = append(f.inserted, insertedMCQ{fileID: fileID, question: q})
	return nil
}

type fakeGenerator struct {
	response  string
	err       error
	calls     int
	gotPrompt string
	gotMIME   string
	gotData   string
}

func (g *fakeGenerator) GenerateContent(prompt, mimeType, data string) (string, error) {
	g.calls++
	g.gotPrompt = prompt
	g.gotMIME = mimeType
	g.gotData = data
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func serveBytes(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
}

func TestGenerate_EndToEnd(t *testing.T) {
	fileServer := serveBytes(t, []byte("%PDF-1.4 fake document"))
	defer fileServer.Close()

	store := newFakeStore()
	store.files["f1"] = &models.File{
		PublicURL:   fileServer.URL + "/doc.pdf",
		StoragePath: "uploads/1.pdf",
	}
	gen := &fakeGenerator{response: threeItemArray}

	p := pipeline.New(store, gen, nil)
	jobID, err := p.Generate("f1", "")

	assert.NoError(t, err)
	assert.Equal(t, store.jobID.String(), jobID)
	assert.Equal(t, 1, store.createdJobs)
	assert.Equal(t, []models.JobStatus{models.JobStatusProcessing, models.JobStatusDone}, store.statusUpdates)
	assert.Len(t, store.inserted, 3)
	for _, row := range store.inserted {
		assert.Equal(t, "f1", row.fileID)
	}
	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.gotPrompt, "30 multiple-choice questions")
}

func TestGenerate_ReusesSuppliedJobID(t *testing.T) {
	fileServer := serveBytes(t, []byte("data"))
	defer fileServer.Close()

	store := newFakeStore()
	store.files["f1"] = &models.File{PublicURL: fileServer.URL, StoragePath: "uploads/1.pdf"}
	gen := &fakeGenerator{response: "[]"}

	p := pipeline.New(store, gen, nil)
	jobID, err := p.Generate("f1", "existing-job")

	assert.NoError(t, err)
	assert.Equal(t, "existing-job", jobID)
	assert.Equal(t, 0, store.createdJobs)
}

func TestGenerate_CreateJobFailureAborts(t *testing.T) {
	store := newFakeStore()
	store.createJobErr = fmt.Errorf("insert rejected")
	gen := &fakeGenerator{response: threeItemArray}

	p := pipeline.New(store, gen, nil)
	_, err := p.Generate("f1", "")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create job")
	assert.Empty(t, store.statusUpdates)
	assert.Equal(t, 0, gen.calls)
}

func TestGenerate_FileNotFoundMarksFailed(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{response: threeItemArray}

	p := pipeline.New(store, gen, nil)
	_, err := p.Generate("missing", "")

	assert.Error(t, err)
	assert.Equal(t, []models.JobStatus{models.JobStatusProcessing, models.JobStatusFailed}, store.statusUpdates)
	assert.Equal(t, 0, gen.calls)
	assert.Empty(t, store.inserted)
}

func TestGenerate_OversizeFileFailsBeforeProvider(t *testing.T) {
	fileServer := serveBytes(t, bytes.Repeat([]byte{'x'}, pipeline.MaxFileBytes+1))
	defer fileServer.Close()

	store := newFakeStore()
	store.files["f1"] = &models.File{PublicURL: fileServer.URL, StoragePath: "uploads/big.pdf"}
	gen := &fakeGenerator{response: threeItemArray}

	p := pipeline.New(store, gen, nil)
	_, err := p.Generate("f1", "")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "20 MiB")
	assert.Equal(t, 0, gen.calls)
	assert.Equal(t, []models.JobStatus{models.JobStatusProcessing, models.JobStatusFailed}, store.statusUpdates)
}

func TestGenerate_MIMEInference(t *testing.T) {
	fileServer := serveBytes(t, []byte("data"))
	defer fileServer.Close()

	cases := []struct {
		storagePath string
		storedMIME  string
		wantMIME    string
	}{
		{"uploads/1.png", "", "image/png"},
		{"uploads/1.pdf", "", "application/pdf"},
		{"uploads/1.xyz", "", "application/octet-stream"},
		{"uploads/1.xyz", "application/pdf", "application/pdf"},
	}

	for _, tc := range cases {
		store := newFakeStore()
		store.files["f1"] = &models.File{
			PublicURL:   fileServer.URL,
			StoragePath: tc.storagePath,
			MimeType:    tc.storedMIME,
		}
		gen := &fakeGenerator{response: "[]"}

		p := pipeline.New(store, gen, nil)
		_, err := p.Generate("f1", "")

		assert.NoError(t, err)
		assert.Equal(t, tc.wantMIME, gen.gotMIME, tc.storagePath)
	}
}

func TestGenerate_EncodesFileForProvider(t *testing.T) {
	content := []byte("binary\x00content")
	fileServer := serveBytes(t, content)
	defer fileServer.Close()

	store := newFakeStore()
	store.files["f1"] = &models.File{PublicURL: fileServer.URL, StoragePath: "uploads/1.pdf"}
	gen := &fakeGenerator{response: "[]"}

	p := pipeline.New(store, gen, nil)
	_, err := p.Generate("f1", "")

	assert.NoError(t, err)
	assert.Equal(t, pipeline.EncodeInline(content), gen.gotData)
}

func TestGenerate_UnparseableOutputMarksFailed(t *testing.T) {
	fileServer := serveBytes(t, []byte("data"))
	defer fileServer.Close()

	store := newFakeStore()
	store.files["f1"] = &models.File{PublicURL: fileServer.URL, StoragePath: "uploads/1.pdf"}
	gen := &fakeGenerator{response: "Sorry, I cannot help with that."}

	p := pipeline.New(store, gen, nil)
	_, err := p.Generate("f1", "")

	assert.Error(t, err)
	assert.Empty(t, store.inserted)
	assert.Equal(t, []models.JobStatus{models.JobStatusProcessing, models.JobStatusFailed}, store.statusUpdates)
}

func TestGenerate_ProviderErrorMarksFailed(t *testing.T) {
	fileServer := serveBytes(t, []byte("data"))
	defer fileServer.Close()

	store := newFakeStore()
	store.files["f1"] = &models.File{PublicURL: fileServer.URL, StoragePath: "uploads/1.pdf"}
	gen := &fakeGenerator{err: fmt.Errorf("provider rejected request: status 400")}

	p := pipeline.New(store, gen, nil)
	_, err := p.Generate("f1", "")

	assert.Error(t, err)
	assert.Equal(t, []models.JobStatus{models.JobStatusProcessing, models.JobStatusFailed}, store.statusUpdates)
}

func TestGenerate_PartialInsertFailureStillCompletes(t *testing.T) {
	fileServer := serveBytes(t, []byte("data"))
	defer fileServer.Close()

	store := newFakeStore()
	store.files["f1"] = &models.File{PublicURL: fileServer.URL, StoragePath: "uploads/1.pdf"}
	store.failInsertAt = map[int]bool{1: true}
	gen := &fakeGenerator{response: threeItemArray}

	p := pipeline.New(store, gen, nil)
	jobID, err := p.Generate("f1", "")

	assert.NoError(t, err)
	assert.Equal(t, store.jobID.String(), jobID)
	assert.Equal(t, 3, store.insertAttempt)
	assert.Len(t, store.inserted, 2)
	assert.Equal(t, []models.JobStatus{models.JobStatusProcessing, models.JobStatusDone}, store.statusUpdates)
}

func TestGenerate_StatusPatchFailureIsNotFatal(t *testing.T) {
	fileServer := serveBytes(t, []byte("data"))
	defer fileServer.Close()

	store := newFakeStore()
	store.files["f1"] = &models.File{PublicURL: fileServer.URL, StoragePath: "uploads/1.pdf"}
	store.updateErr = fmt.Errorf("patch rejected")
	gen := &fakeGenerator{response: threeItemArray}

	p := pipeline.New(store, gen, nil)
	_, err := p.Generate("f1", "")

	assert.NoError(t, err)
	assert.Len(t, store.inserted, 3)
}
