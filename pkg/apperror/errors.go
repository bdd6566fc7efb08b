package apperror

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds shared by the ingestion, retrieval and chat flows.
// Callers classify with errors.Is; wrapping keeps the original cause.
var (
	ErrSourceNotFound   = errors.New("source document not found")
	ErrStorageFailure   = errors.New("document storage unavailable")
	ErrExtraction       = errors.New("document could not be parsed")
	ErrEmptyInput       = errors.New("empty input")
	ErrEmbeddingService = errors.New("embedding service failure")
	ErrIndexUnavailable = errors.New("vector index unavailable")
	ErrPersistence      = errors.New("persistence failure")
	ErrRateLimited      = errors.New("rate limited")

	ErrNotFound      = errors.New("resource not found")
	ErrForbidden     = errors.New("forbidden")
	ErrQuotaExceeded = errors.New("plan quota exceeded")
)

// RateLimitError is returned when the language model refuses a request
// because of quota. RetryAfter is zero when the provider gave no hint.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// Wrap attaches kind to err so that errors.Is(result, kind) holds while
// the message still carries the underlying cause.
func Wrap(kind error, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}
