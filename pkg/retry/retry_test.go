package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/M4kuro/budget-cloud-solution/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	cfg := retry.RetryConfig{
		MaxAttempts: 3,
		Backoff:     retry.LineareBackoff(time.Millisecond),
	}

	t.Run("FirstAttemptSucceeds", func(t *testing.T) {
		var calls int

		err := retry.Do(t.Context(), cfg, func() error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		var calls int

		err := retry.Do(t.Context(), cfg, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("ExhaustsAttempts", func(t *testing.T) {
		var calls int
		wantErr := errors.New("persistent")

		err := retry.Do(t.Context(), cfg, func() error {
			calls++
			return wantErr
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, wantErr)
		assert.Equal(t, 3, calls)
	})

	t.Run("NonRetryableStopsEarly", func(t *testing.T) {
		fatal := errors.New("fatal")
		cfg := retry.RetryConfig{
			MaxAttempts: 3,
			Backoff:     retry.LineareBackoff(time.Millisecond),
			ShouldRetry: func(err error) bool {
				return !errors.Is(err, fatal)
			},
		}

		var calls int
		err := retry.Do(t.Context(), cfg, func() error {
			calls++
			return fatal
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, fatal)
		assert.Equal(t, 1, calls)
	})
}

func TestDoWithResult(t *testing.T) {
	cfg := retry.RetryConfig{
		MaxAttempts: 2,
		Backoff:     retry.LineareBackoff(time.Millisecond),
	}

	t.Run("ReturnsResult", func(t *testing.T) {
		got, err := retry.DoWithResult(t.Context(), cfg, func() (int, error) {
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := retry.DoWithResult(ctx, cfg, func() (int, error) {
			return 0, errors.New("never reached")
		})

		require.Error(t, err)
	})
}
