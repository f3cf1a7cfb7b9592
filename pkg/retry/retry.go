package retry

import (
	"context"
	"time"
)

// Policy defines how an operation is retried: how many times it is
// attempted, how long to wait between attempts and which errors are worth
// retrying at all.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Retryable   func(err error) bool
}

// ExponentialBackoff returns 2^attempt seconds, with attempt starting at 1.
func ExponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// NewPolicy returns a policy with exponential backoff retrying any error.
func NewPolicy(maxAttempts int) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Backoff:     ExponentialBackoff,
		Retryable:   func(error) bool { return true },
	}
}

// Do runs fn up to MaxAttempts times, sleeping Backoff(attempt) between
// attempts. It returns nil as soon as fn succeeds. A non-retryable error is
// returned immediately, otherwise the error of the last attempt is returned.
// The sleep is interrupted by the context, in which case ctx.Err() is
// returned.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}

		wait := time.Duration(0)
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return lastErr
}
