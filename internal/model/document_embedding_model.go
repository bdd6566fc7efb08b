package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// DocumentEmbedding is one chunk vector. Rows are keyed by (namespace, id)
// so the same chunk id in two documents never collides.
type DocumentEmbedding struct {
	Namespace      string          `gorm:"type:text;primaryKey"`
	Id             string          `gorm:"type:varchar(64);primaryKey"`
	Content        string          `gorm:"type:text;not null"`
	PageNumber     int             `gorm:"not null;default:0"`
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // Gemini text-embedding-004 uses 768 dimensions
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (DocumentEmbedding) TableName() string {
	return "document_embeddings"
}
