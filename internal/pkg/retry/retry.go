package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAttemptTimeout is returned when a single attempt exceeds Policy.Timeout.
var ErrAttemptTimeout = errors.New("attempt timed out")

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int
	// Delay is the fixed wait between attempts.
	Delay time.Duration
	// Timeout bounds each attempt. Zero means no per-attempt bound.
	Timeout time.Duration
}

// DefaultPolicy is three attempts, two seconds apart, ten seconds each.
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	Delay:       2 * time.Second,
	Timeout:     10 * time.Second,
}

// Do runs fn until it succeeds or the policy is exhausted, returning the last error.
// Each attempt races against Policy.Timeout even if fn ignores its context.
// onRetry, when non-nil, is invoked before every retry with the failed attempt number and its error.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error), onRetry func(attempt int, err error)) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		res, err := runAttempt(ctx, p.Timeout, fn)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == attempts {
			break
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}

		timer := time.NewTimer(p.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("retry aborted after %d attempts: %w", attempt, ctx.Err())
		case <-timer.C:
		}
	}
	return zero, lastErr
}

type attemptResult[T any] struct {
	val T
	err error
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if timeout <= 0 {
		return fn(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan attemptResult[T], 1)
	go func() {
		v, err := fn(attemptCtx)
		done <- attemptResult[T]{val: v, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, fmt.Errorf("%w after %s", ErrAttemptTimeout, timeout)
	}
}
