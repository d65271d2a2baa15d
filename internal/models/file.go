package models

import (
	"time"

	"github.com/google/uuid"
)

// File describes one uploaded source document. Rows are created by the
// upload flow and read-only afterwards.
type File struct {
	ID          uuid.UUID `json:"id"`
	StoragePath string    `json:"storage_path"`
	PublicURL   string    `json:"public_url"`
	MimeType    string    `json:"mime_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
