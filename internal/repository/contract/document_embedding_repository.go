package contract

import (
	"pdfchat-be/pkg/vectorindex"
)

// DocumentEmbeddingRepository is the Postgres-backed vector index.
type DocumentEmbeddingRepository interface {
	vectorindex.Index
	vectorindex.Replacer
}
