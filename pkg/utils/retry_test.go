package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Duration(0), CalculateBackoff(time.Second, 0))

	for attempt := 1; attempt <= 3; attempt++ {
		nominal := 100 * time.Millisecond * time.Duration(1<<uint(attempt))
		got := CalculateBackoff(100*time.Millisecond, attempt)
		assert.GreaterOrEqual(t, got, nominal-nominal/4)
		assert.Less(t, got, nominal+nominal/4)
	}

	capped := CalculateBackoff(time.Second, 40)
	assert.LessOrEqual(t, capped, maxBackoff+maxBackoff/4)
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func(ctx context.Context) error {
		calls++
		return errors.New("still down")
	})
	assert.EqualError(t, err, "still down")
	assert.Equal(t, 2, calls)
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, time.Hour, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
