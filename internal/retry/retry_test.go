package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errTransient = errors.New("transient")

func always(error) bool { return true }

func onlyTransient(err error) bool { return errors.Is(err, errTransient) }

func TestPolicy_Do(t *testing.T) {
	t.Run("success on first attempt", func(t *testing.T) {
		attempts := 0
		err := New().Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return nil
		}, always, nil)
		assert.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("success after retries", func(t *testing.T) {
		p := New(WithMaxRetries(3), WithInitialInterval(time.Millisecond))
		attempts := 0
		notified := 0
		err := p.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errTransient
			}
			return nil
		}, always, func(error, time.Duration) { notified++ })
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, 2, notified)
	})

	t.Run("fail after max retries", func(t *testing.T) {
		p := New(WithMaxRetries(2), WithInitialInterval(time.Millisecond))
		attempts := 0
		err := p.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return errTransient
		}, always, nil)
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 3, attempts) // 1 initial + 2 retries
	})

	t.Run("permanent error is not retried", func(t *testing.T) {
		permanent := errors.New("missing field")
		attempts := 0
		err := New(WithInitialInterval(time.Millisecond)).Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return permanent
		}, onlyTransient, nil)
		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, attempts)
	})

	t.Run("context cancellation", func(t *testing.T) {
		p := New(WithMaxRetries(5), WithInitialInterval(100*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())

		attempts := 0
		err := p.Do(ctx, func(ctx context.Context) error {
			attempts++
			if attempts == 2 {
				cancel()
			}
			return errTransient
		}, always, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 2, attempts)
	})
}
