package supabase

import (
	"fmt"

	"github.com/supabase-community/postgrest-go"
	"study-mcq-backend/internal/models"
)

// Store reads and writes the jobs, files and mcqs tables through PostgREST.
type Store struct {
	client *Client
}

func NewStore(client *Client) *Store {
	return &Store{client: client}
}

func (s *Store) CreateJob(fileID string) (*models.Job, error) {
	payload := map[string]interface{}{
		"file_id": fileID,
		"status":  string(models.JobStatusQueued),
	}

	var jobs []models.Job
	_, err := s.client.Supabase.From("jobs").
		Insert(payload, false, "", "representation", "").
		ExecuteTo(&jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no job row returned on insert")
	}

	return &jobs[0], nil
}

func (s *Store) UpdateJobStatus(jobID string, status models.JobStatus) error {
	payload := map[string]interface{}{"status": string(status)}

	_, _, err := s.client.Supabase.From("jobs").
		Update(payload, "", "").
		Eq("id", jobID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update job %s status: %w", jobID, err)
	}

	return nil
}

func (s *Store) GetJob(jobID string) (*models.Job, error) {
	var jobs []models.Job
	_, err := s.client.Supabase.From("jobs").
		Select("*", "", false).
		Eq("id", jobID).
		ExecuteTo(&jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("job %s not found", jobID)
	}

	return &jobs[0], nil
}

func (s *Store) GetFile(fileID string) (*models.File, error) {
	var files []models.File
	_, err := s.client.Supabase.From("files").
		Select("*", "", false).
		Eq("id", fileID).
		ExecuteTo(&files)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("file %s not found", fileID)
	}

	return &files[0], nil
}

func (s *Store) CreateFile(storagePath, publicURL, mimeType string) (*models.File, error) {
	payload := map[string]interface{}{
		"storage_path": storagePath,
		"public_url":   publicURL,
	}
	if mimeType != "" {
		payload["mime_type"] = mimeType
	}

	var files []models.File
	_, err := s.client.Supabase.From("files").
		Insert(payload, false, "", "representation", "").
		ExecuteTo(&files)
	if err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no file row returned on insert")
	}

	return &files[0], nil
}

func (s *Store) CreateMCQ(fileID string, q models.GeneratedQuestion) error {
	payload := map[string]interface{}{
		"file_id":      fileID,
		"question":     q.Question,
		"options":      q.Options,
		"answer_index": q.AnswerIndex,
	}

	_, _, err := s.client.Supabase.From("mcqs").
		Insert(payload, false, "", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to insert mcq: %w", err)
	}

	return nil
}

func (s *Store) ListMCQs(limit, offset int) ([]models.MCQ, error) {
	var mcqs []models.MCQ
	_, err := s.client.Supabase.From("mcqs").
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Range(offset, offset+limit-1, "").
		ExecuteTo(&mcqs)
	if err != nil {
		return nil, fmt.Errorf("failed to list mcqs: %w", err)
	}

	return mcqs, nil
}
