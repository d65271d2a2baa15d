package models

import (
	"time"

	"github.com/google/uuid"
)

// MCQ is one persisted multiple-choice question row.
type MCQ struct {
	ID          uuid.UUID `json:"id"`
	FileID      uuid.UUID `json:"file_id"`
	Question    string    `json:"question"`
	Options     []string  `json:"options"`
	AnswerIndex int       `json:"answer_index"`
	CreatedAt   time.Time `json:"created_at"`
}

// GeneratedQuestion is one item as it arrives from the model's output.
// Fields are inserted verbatim, no per-item validation is applied.
type GeneratedQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
}
