package pipeline

import (
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"study-mcq-backend/internal/models"
)

const (
	// MaxFileBytes is the largest decoded payload forwarded to the
	// provider; its inline-data API rejects anything bigger.
	MaxFileBytes = 20 << 20

	// encodeChunkSize is how many raw bytes are fed to the base64
	// encoder per write. Keeps single allocations small on large files.
	encodeChunkSize = 8 * 1024
)

const generationPrompt = `You are a quiz generator. Read the attached document and create exactly 30 multiple-choice questions about its subject matter. Respond with a JSON array only, no prose and no markdown fences. Each element must be an object with keys "question" (string), "options" (array of exactly 4 strings) and "answer_index" (0-based integer index of the correct option). Ask only about the document's domain content, never about its formatting, file name or metadata.`

// Store is the slice of the relational backend the pipeline needs.
type Store interface {
	CreateJob(fileID string) (*models.Job, error)
	UpdateJobStatus(jobID string, status models.JobStatus) error
	GetFile(fileID string) (*models.File, error)
	CreateMCQ(fileID string, q models.GeneratedQuestion) error
}

// Generator produces the raw model output for a prompt plus an inline file.
type Generator interface {
	GenerateContent(prompt, mimeType, data string) (string, error)
}

// Pipeline orchestrates one generation request: job row, file fetch,
// provider call, parse, persistence, terminal status. It holds no state
// across invocations.
type Pipeline struct {
	store      Store
	generator  Generator
	httpClient *http.Client
}

func New(store Store, generator Generator, httpClient *http.Client) *Pipeline {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Pipeline{
		store:      store,
		generator:  generator,
		httpClient: httpClient,
	}
}

// Generate runs the whole pipeline for fileID. When jobID is empty a fresh
// job row is created first and its id returned; a supplied jobID is reused
// as-is. Status patches are best-effort except that any fatal error after
// the job has been marked processing also marks it failed, so no job is
// left in processing forever.
func (p *Pipeline) Generate(fileID, jobID string) (string, error) {
	status := models.JobStatusQueued

	if jobID == "" {
		job, err := p.store.CreateJob(fileID)
		if err != nil {
			return "", fmt.Errorf("failed to create job: %w", err)
		}
		jobID = job.ID.String()
	}

	p.setStatus(jobID, &status, models.JobStatusProcessing)

	questions, err := p.run(fileID)
	if err != nil {
		p.setStatus(jobID, &status, models.JobStatusFailed)
		return "", err
	}

	for i, q := range questions {
		if err := p.store.CreateMCQ(fileID, q); err != nil {
			// At-least-effort persistence: one bad row must not
			// discard the rest of the batch.
			log.Printf("Warning: failed to insert question %d for file %s: %v", i, fileID, err)
		}
	}

	p.setStatus(jobID, &status, models.JobStatusDone)

	return jobID, nil
}

// run covers file resolution through parsing; everything here is fatal.
func (p *Pipeline) run(fileID string) ([]models.GeneratedQuestion, error) {
	file, err := p.store.GetFile(fileID)
	if err != nil {
		return nil, err
	}

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = InferMIMEType(file.StoragePath)
	}

	data, err := p.fetchFile(file.PublicURL)
	if err != nil {
		return nil, err
	}

	text, err := p.generator.GenerateContent(generationPrompt, mimeType, EncodeInline(data))
	if err != nil {
		return nil, err
	}

	return ExtractQuestions(text)
}

func (p *Pipeline) fetchFile(publicURL string) ([]byte, error) {
	resp, err := p.httpClient.Get(publicURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}
	if len(data) > MaxFileBytes {
		return nil, fmt.Errorf("file exceeds the 20 MiB provider limit")
	}

	return data, nil
}

// setStatus advances the tracked status and patches the job row. Patch
// failures are logged and swallowed: the row is advisory for polling
// clients and must not turn a progress write into a hard dependency.
func (p *Pipeline) setStatus(jobID string, current *models.JobStatus, next models.JobStatus) {
	if !current.CanTransition(next) {
		log.Printf("Warning: refusing job %s status transition %s -> %s", jobID, *current, next)
		return
	}

	*current = next
	if err := p.store.UpdateJobStatus(jobID, next); err != nil {
		log.Printf("Warning: failed to mark job %s as %s: %v", jobID, next, err)
	}
}

// InferMIMEType maps a storage path's extension to the declared type sent
// to the provider. Unknown extensions fall back to a generic binary type.
func InferMIMEType(storagePath string) string {
	switch strings.ToLower(path.Ext(storagePath)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// EncodeInline base64-encodes data for the provider's inlineData field.
// The buffer is streamed through the encoder in fixed-size chunks so very
// large files never hit single-call argument limits; the encoder carries
// remainder bytes across writes, so the output is byte-for-byte identical
// to encoding in one pass.
func EncodeInline(data []byte) string {
	var sb strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	for off := 0; off < len(data); off += encodeChunkSize {
		end := off + encodeChunkSize
		if end > len(data) {
			end = len(data)
		}
		enc.Write(data[off:end])
	}
	enc.Close()
	return sb.String()
}
