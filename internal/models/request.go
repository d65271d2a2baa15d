package models

type GenerateRequest struct {
	// FileID references an existing files row. Required.
	FileID string `json:"file_id"`
	// JobID optionally reuses an existing jobs row instead of creating one.
	JobID string `json:"job_id,omitempty"`
}
