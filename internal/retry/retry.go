// Package retry runs upstream calls with jittered exponential backoff. An
// error can carry the wait the upstream asked for (a Retry-After header),
// which replaces the computed backoff for that attempt.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"time"

	"nathanbeddoewebdev/cfdash/internal/domain"
)

// Predicate determines whether an error should be retried.
type Predicate func(error) bool

// Config controls retry behavior.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// MaxDelay caps both computed and requested delays. Zero means no cap.
	MaxDelay time.Duration
}

// DefaultConfig returns three attempts starting at half a second.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// Do calls fn until it succeeds, returns an error shouldRetry rejects, or
// the attempts run out. The last error is returned unchanged.
func Do(ctx context.Context, cfg Config, shouldRetry Predicate, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if shouldRetry == nil {
		shouldRetry = IsRetryable
	}

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err = fn(); err == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts || !shouldRetry(err) {
			return err
		}

		if !sleep(ctx, cfg.delay(err, attempt)) {
			return ctx.Err()
		}
	}
	return err
}

func (cfg Config) delay(err error, attempt int) time.Duration {
	d, ok := RequestedDelay(err)
	if !ok {
		return backoffDelay(cfg.BaseDelay, cfg.MaxDelay, attempt)
	}
	if cfg.MaxDelay > 0 && d > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return d
}

type delayError struct {
	err   error
	after time.Duration
}

func (e *delayError) Error() string { return e.err.Error() }
func (e *delayError) Unwrap() error { return e.err }

// WithDelay annotates err with the minimum wait before the next attempt.
// The message and the wrapped chain of err are preserved.
func WithDelay(err error, after time.Duration) error {
	if err == nil || after <= 0 {
		return err
	}
	return &delayError{err: err, after: after}
}

// RequestedDelay returns the wait attached with WithDelay, if any.
func RequestedDelay(err error) (time.Duration, bool) {
	var de *delayError
	if errors.As(err, &de) {
		return de.after, true
	}
	return 0, false
}

// IsRetryable determines whether an error is likely transient: timeouts,
// throttling and upstream 5xx responses.
func IsRetryable(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, domain.ErrRateLimited),
		errors.Is(err, domain.ErrUnavailable):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// backoffDelay picks a full-jitter delay in [0, min(base*2^(attempt-1), max)].
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}

	delay := base << (attempt - 1)
	if delay <= 0 || (max > 0 && delay > max) {
		delay = max
	}
	if delay <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(delay) + 1))
}

func sleep(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
