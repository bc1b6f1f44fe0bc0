package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "wbprivacy/pkg/errors"
	"wbprivacy/pkg/logger"
)

func fastConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return &errs.Error{Type: errs.ErrorTypeHTTP, Code: 502, Message: "bad gateway"}
		}
		return nil
	}, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	failure := &errs.Error{Type: errs.ErrorTypeHTTP, Code: 429, Message: "too many requests"}

	err := Do(func() error {
		calls++
		return failure
	}, fastConfig(3))

	require.Error(t, err)
	assert.Equal(t, 3, calls, "exactly MaxAttempts calls")
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")

	// The last attempt's error is preserved in the chain
	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.Code)
}

func TestDoNoWaitAfterFinalAttempt(t *testing.T) {
	cfg := fastConfig(3)
	cfg.Backoff = &ConstantBackoff{Delay: 40 * time.Millisecond}

	start := time.Now()
	err := Do(func() error {
		return &errs.Error{Type: errs.ErrorTypeTransport, Message: "down"}
	}, cfg)
	elapsed := time.Since(start)

	require.Error(t, err)
	// Two waits between three attempts, none after the last
	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
	assert.Less(t, elapsed, 115*time.Millisecond)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	failure := &errs.Error{Type: errs.ErrorTypeAPI, Message: "ok=-100"}

	err := Do(func() error {
		calls++
		return failure
	}, fastConfig(3))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, failure, err, "non-retryable errors pass through unwrapped")
}

func TestDoOnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}

	_ = Do(func() error {
		return &errs.Error{Type: errs.ErrorTypeTransport, Message: "down"}
	}, cfg)

	// Called before each wait: after attempts 1 and 2, not after the last
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := fastConfig(3)
	cfg.Context = ctx
	cfg.Backoff = &ConstantBackoff{Delay: 10 * time.Second}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(func() error {
			calls++
			return &errs.Error{Type: errs.ErrorTypeTransport, Message: "down"}
		}, cfg)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transport", &errs.Error{Type: errs.ErrorTypeTransport}, true},
		{"http status", &errs.Error{Type: errs.ErrorTypeHTTP, Code: 500}, true},
		{"api envelope", &errs.Error{Type: errs.ErrorTypeAPI}, false},
		{"mutation envelope", &errs.Error{Type: errs.ErrorTypeMutation}, false},
		{"parse", &errs.Error{Type: errs.ErrorTypeParse}, false},
		{"auth", &errs.Error{Type: errs.ErrorTypeAuth}, false},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
		{"plain error", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultRetryIf(tt.err))
		})
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	result, err := DoWithResult(func() (string, error) {
		calls++
		if calls < 2 {
			return "", &errs.Error{Type: errs.ErrorTypeTransport, Message: "down"}
		}
		return "payload", nil
	}, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, "payload", result)
	assert.Equal(t, 2, calls)
}

func TestRetrierWithMaxAttempts(t *testing.T) {
	retrier := NewRetrier(fastConfig(5)).WithMaxAttempts(2)

	calls := 0
	err := retrier.Do(func() error {
		calls++
		return &errs.Error{Type: errs.ErrorTypeTransport, Message: "down"}
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestExponentialBackoffDelays(t *testing.T) {
	backoff := DefaultExponentialBackoff()

	assert.Equal(t, 1*time.Second, backoff.NextDelay(1))
	assert.Equal(t, 2*time.Second, backoff.NextDelay(2))
	assert.Equal(t, 4*time.Second, backoff.NextDelay(3))
	assert.Equal(t, 8*time.Second, backoff.NextDelay(4))

	// Capped at MaxDelay
	assert.Equal(t, 60*time.Second, backoff.NextDelay(10))

	assert.Equal(t, time.Duration(0), backoff.NextDelay(0))
}

func TestConstantBackoffDelays(t *testing.T) {
	backoff := &ConstantBackoff{Delay: 5 * time.Second}

	assert.Equal(t, 5*time.Second, backoff.NextDelay(1))
	assert.Equal(t, 5*time.Second, backoff.NextDelay(7))
	assert.Equal(t, time.Duration(0), backoff.NextDelay(0))
}

func TestWait(t *testing.T) {
	t.Run("zero delay returns immediately", func(t *testing.T) {
		require.NoError(t, Wait(context.Background(), 0))
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Wait(ctx, time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
