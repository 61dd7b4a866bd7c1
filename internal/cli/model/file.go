package model

import (
	"time"

	"DriveX/internal/kind"
)

// File — метаданные файла в локальном (mock) хранилище.
type File struct {
	ID          string
	Name        string
	URL         string
	MimeType    string
	Size        int64
	Kind        kind.Category
	Description string
	UploadedAt  time.Time
}
