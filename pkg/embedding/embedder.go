package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"pdfchat-be/pkg/apperror"

	"github.com/patrickmn/go-cache"
)

// DefaultDimensions matches text-embedding-004 and the vector(768) column.
const DefaultDimensions = 768

// Embedder wraps a provider with input cleanup and dimension checks.
// It never retries; callers decide how to react to a failure.
type Embedder struct {
	provider   EmbeddingProvider
	dimensions int
	queryCache *cache.Cache
}

func NewEmbedder(provider EmbeddingProvider, dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{
		provider:   provider,
		dimensions: dimensions,
		queryCache: cache.New(30*time.Minute, 10*time.Minute),
	}
}

func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Embed returns the document-side vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.generate(ctx, text, TaskRetrievalDocument)
}

// EmbedQuery returns the query-side vector for text. Results are cached
// since the same question is often re-asked within a conversation.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	clean := cleanInput(text)
	if clean == "" {
		return nil, apperror.ErrEmptyInput
	}

	key := cacheKey(clean)
	if v, found := e.queryCache.Get(key); found {
		return v.([]float32), nil
	}

	vec, err := e.generate(ctx, clean, TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	e.queryCache.Set(key, vec, cache.DefaultExpiration)
	return vec, nil
}

func (e *Embedder) generate(ctx context.Context, text, taskType string) ([]float32, error) {
	clean := cleanInput(text)
	if clean == "" {
		return nil, apperror.ErrEmptyInput
	}

	res, err := e.provider.Generate(ctx, clean, taskType)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrEmbeddingService, err)
	}
	if res == nil || len(res.Embedding.Values) != e.dimensions {
		got := 0
		if res != nil {
			got = len(res.Embedding.Values)
		}
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", apperror.ErrEmbeddingService, e.dimensions, got)
	}
	return res.Embedding.Values, nil
}

func cleanInput(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
