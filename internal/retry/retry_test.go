package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTransient = errors.New("rate limited")
	errFatal     = errors.New("unauthorized")
)

func isTransient(err error) bool { return errors.Is(err, errTransient) }

// recordingPolicy returns a policy whose sleeps are recorded instead of slept.
func recordingPolicy(slept *[]time.Duration) Policy {
	p := Default(isTransient)
	p.Sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return p
}

func TestDo_SucceedsAfterTwoRetryableFailures(t *testing.T) {
	var slept []time.Duration
	calls := 0

	got, err := Do(context.Background(), recordingPolicy(&slept), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errTransient
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)
}

func TestDo_NonRetryableNeverSleeps(t *testing.T) {
	var slept []time.Duration
	calls := 0

	_, err := Do(context.Background(), recordingPolicy(&slept), func(context.Context) (int, error) {
		calls++
		return 0, errFatal
	})

	require.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	var slept []time.Duration
	calls := 0
	wrapped := &wrapErr{errTransient}

	_, err := Do(context.Background(), recordingPolicy(&slept), func(context.Context) (int, error) {
		calls++
		return 0, wrapped
	})

	assert.Same(t, wrapped, err)
	assert.Equal(t, DefaultMaxRetries+1, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, slept)
}

func TestDo_OnRetryReportsAttempts(t *testing.T) {
	var slept []time.Duration
	p := recordingPolicy(&slept)
	p.MaxRetries = 2
	p.BaseDelay = 10 * time.Millisecond

	var attempts []int
	p.OnRetry = func(attempt, maxRetries int, delay time.Duration, err error) {
		assert.Equal(t, 2, maxRetries)
		assert.ErrorIs(t, err, errTransient)
		attempts = append(attempts, attempt)
	}

	_, err := Do(context.Background(), p, func(context.Context) (int, error) {
		return 0, errTransient
	})

	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, attempts)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, slept)
}

func TestDo_NilPredicateDoesNotRetry(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{MaxRetries: 5, BaseDelay: time.Hour}, func(context.Context) (int, error) {
		calls++
		return 0, errTransient
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Default(isTransient)
	p.BaseDelay = time.Hour

	calls := 0
	_, err := Do(ctx, p, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errTransient
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_IndependentInvocations(t *testing.T) {
	var sleptA, sleptB []time.Duration
	pa, pb := recordingPolicy(&sleptA), recordingPolicy(&sleptB)

	failOnce := func() func(context.Context) (int, error) {
		n := 0
		return func(context.Context) (int, error) {
			n++
			if n == 1 {
				return 0, errTransient
			}
			return n, nil
		}
	}

	_, err := Do(context.Background(), pa, failOnce())
	require.NoError(t, err)
	_, err = Do(context.Background(), pb, failOnce())
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{time.Second}, sleptA)
	assert.Equal(t, []time.Duration{time.Second}, sleptB)
}

type wrapErr struct{ err error }

func (w *wrapErr) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapErr) Unwrap() error { return w.err }
