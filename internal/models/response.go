package models

import "time"

// GenerateResponse is the uniform envelope of the generation endpoint:
// {ok:true, job_id} on success, {ok:false, error} on failure.
type GenerateResponse struct {
	OK    bool   `json:"ok"`
	JobID string `json:"job_id,omitempty"`
	Error string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type JobStatusResponse struct {
	JobID     string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FeedResponse struct {
	MCQs []MCQ `json:"mcqs"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
