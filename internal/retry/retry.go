// Package retry wraps network and storage calls in exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"video_digest/internal/domain"
)

// Upstream statuses worth another attempt.
var retryableStatuses = map[int]bool{
	408: true,
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// Options controls attempt count and backoff. Zero values take the defaults.
type Options struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64

	// RetryableCodes allow-lists additional domain error codes (e.g.
	// transient network codes) on top of the status check.
	RetryableCodes []string

	// Sleep is replaceable in tests. Defaults to a context-aware wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 3
	}
	if o.InitialDelay == 0 {
		o.InitialDelay = time.Second
	}
	if o.MaxDelay == 0 {
		o.MaxDelay = 10 * time.Second
	}
	if o.BackoffFactor == 0 {
		o.BackoffFactor = 2
	}
	if o.Sleep == nil {
		o.Sleep = sleep
	}
	return o
}

// Error reports an operation that failed after exhausting all attempts. The
// last error is preserved as the cause.
type Error struct {
	Op       string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Result is the record-store response shape: data paired with an embedded
// error instead of a raised one.
type Result[T any] struct {
	Data T
	Err  error
}

// Do runs fn until it succeeds, the error is terminal, or attempts run out.
// Terminal errors propagate immediately without consuming remaining attempts.
func Do[T any](ctx context.Context, op string, opts Options, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	opts = opts.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := opts.Sleep(ctx, delayFor(attempt, opts)); err != nil {
				return zero, err
			}
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !opts.retryable(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, &Error{Op: op, Attempts: opts.MaxAttempts, Err: lastErr}
}

// DoResult is Do for calls returning a result-with-error-field shape: the
// embedded error is checked for retryability instead of a returned one.
func DoResult[T any](ctx context.Context, op string, opts Options, fn func(context.Context) Result[T]) (T, error) {
	return Do(ctx, op, opts, func(ctx context.Context) (T, error) {
		res := fn(ctx)
		return res.Data, res.Err
	})
}

// delayFor computes the wait before attempt n (1-indexed, n > 1):
// min(initialDelay * backoffFactor^(n-1), maxDelay).
func delayFor(attempt int, opts Options) time.Duration {
	d := time.Duration(float64(opts.InitialDelay) * math.Pow(opts.BackoffFactor, float64(attempt-1)))
	if d > opts.MaxDelay || d <= 0 {
		d = opts.MaxDelay
	}
	return d
}

func (o Options) retryable(err error) bool {
	var de *domain.Error
	if !errors.As(err, &de) {
		return false
	}
	if retryableStatuses[de.Status] {
		return true
	}
	for _, code := range o.RetryableCodes {
		if de.Code == code {
			return true
		}
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
