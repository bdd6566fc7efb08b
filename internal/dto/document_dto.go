package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentResponse struct {
	FileKey  string `json:"file_key"`
	FileName string `json:"file_name"`
	Url      string `json:"url"`
}

type IngestDocumentRequest struct {
	FileKey  string `json:"file_key" validate:"required,max=512"`
	FileName string `json:"file_name" validate:"required,max=255"`
}

type IngestDocumentResponse struct {
	DocumentId     uuid.UUID `json:"document_id"`
	ConversationId uuid.UUID `json:"conversation_id"`
	FileKey        string    `json:"file_key"`
	Namespace      string    `json:"namespace"`
	PageCount      int       `json:"page_count"`
	ChunkCount     int       `json:"chunk_count"`
}

type ConversationResponse struct {
	Id         uuid.UUID  `json:"id"`
	DocumentId uuid.UUID  `json:"document_id"`
	Title      string     `json:"title"`
	FileKey    string     `json:"file_key"`
	PdfUrl     string     `json:"pdf_url"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}
