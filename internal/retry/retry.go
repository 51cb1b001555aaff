// Package retry wraps fallible remote calls with bounded exponential backoff.
package retry

import (
	"context"
	"time"
)

// Defaults used when a Policy leaves a field unset.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

// Policy configures Do. The zero value retries nothing.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is multiplied by 2^attempt between attempts.
	BaseDelay time.Duration
	// Retryable classifies a failure. Nil means no failure is retried.
	Retryable func(error) bool
	// Sleep blocks for d. Nil uses a timer that also honors ctx.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before each backoff sleep. attempt is 1-based.
	OnRetry func(attempt, maxRetries int, delay time.Duration, err error)
}

// Default returns the standard policy for the given predicate.
func Default(retryable func(error) bool) Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		Retryable:  retryable,
	}
}

// Delay returns the backoff before the retry that follows attempt (0-based).
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(1<<attempt)
}

// Do runs op until it succeeds, fails with a non-retryable error, or runs
// out of retries. The last error is returned as-is.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 0; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if p.Retryable == nil || !p.Retryable(err) || attempt >= p.MaxRetries {
			return v, err
		}

		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, p.MaxRetries, delay, err)
		}
		if serr := sleep(ctx, delay); serr != nil {
			var zero T
			return zero, serr
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
