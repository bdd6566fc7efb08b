package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks a file from upload to a searchable index.
type DocumentStatus string

const (
	DocumentStatusUploaded DocumentStatus = "uploaded"
	DocumentStatusReady    DocumentStatus = "ready"
)

// Document is created at upload time, which is what ties a file key to
// its owner. Ingestion fills in the index fields.
type Document struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	FileKey    string
	Name       string
	SourceURL  string
	Namespace  string
	Status     DocumentStatus
	PageCount  int
	ChunkCount int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
