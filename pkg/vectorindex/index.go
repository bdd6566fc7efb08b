package vectorindex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"pdfchat-be/pkg/rag"
)

// DefaultTopK is used when a query asks for a non-positive number of matches.
const DefaultTopK = 5

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Metadata travels with every vector so a match can be turned back into text.
type Metadata struct {
	Text       string `json:"text"`
	PageNumber int    `json:"pageNumber"`
}

type Record struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

// Match is one query hit. Score is cosine similarity, higher is closer.
type Match struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// Index stores vectors partitioned by namespace. Upsert is idempotent per
// (namespace, ID) and queries never cross namespaces.
type Index interface {
	Upsert(ctx context.Context, namespace string, records []Record) error
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error)
	DeleteNamespace(ctx context.Context, namespace string) error
}

// Replacer swaps the whole content of a namespace in one step. Indexes
// that can do this atomically implement it; others get delete then upsert.
type Replacer interface {
	Replace(ctx context.Context, namespace string, records []Record) error
}

// RecordID derives a stable identifier from chunk content, so re-ingesting
// an unchanged document overwrites instead of duplicating.
func RecordID(c rag.Chunk) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%d:%s", c.PageNumber, c.Index, c.Text)))
	return hex.EncodeToString(sum[:])
}

// CheckDimensions rejects vectors whose length differs from dims. A
// non-positive dims disables the check.
func CheckDimensions(dims int, vec []float32) error {
	if dims > 0 && len(vec) != dims {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, dims, len(vec))
	}
	return nil
}
