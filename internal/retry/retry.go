// Package retry runs operations with bounded exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultInitialInterval = 500 * time.Millisecond
	defaultMaxInterval     = 10 * time.Second
	defaultMaxRetries      = 3
)

// Policy configures how often and how long an operation is retried.
type Policy struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	maxRetries      uint64
}

// Option defines a function to configure the Policy.
type Option func(*Policy)

// WithInitialInterval sets the initial retry interval.
func WithInitialInterval(d time.Duration) Option {
	return func(p *Policy) {
		p.initialInterval = d
	}
}

// WithMaxInterval caps the interval between attempts.
func WithMaxInterval(d time.Duration) Option {
	return func(p *Policy) {
		p.maxInterval = d
	}
}

// WithMaxRetries sets the maximum number of retries after the first attempt.
func WithMaxRetries(n uint64) Option {
	return func(p *Policy) {
		p.maxRetries = n
	}
}

// New creates a Policy with default values and optional overrides.
func New(opts ...Option) *Policy {
	p := &Policy{
		initialInterval: defaultInitialInterval,
		maxInterval:     defaultMaxInterval,
		maxRetries:      defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Do runs fn until it succeeds, returns an error that retryable rejects,
// the retry budget is spent or ctx is done. notify, when set, is called
// before each wait.
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context) error, retryable func(error) bool, notify func(err error, wait time.Duration)) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initialInterval
	b.MaxInterval = p.maxInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, p.maxRetries), ctx)

	operation := func() error {
		err := fn(ctx)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.RetryNotify(operation, policy, notify)
}
