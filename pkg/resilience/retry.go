// Package resilience provides retry and timeout helpers. The orchestration
// core performs no retries itself; adapters that talk to external systems
// (completion engine, search API) wrap their calls here.
package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/jverdu/emissary/pkg/errors"
)

// RetryConfig controls retry behavior with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts (must be >= 1).
	MaxAttempts int

	// InitialDelay is the first backoff delay.
	InitialDelay time.Duration

	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration

	// Multiplier for exponential backoff (default 2.0).
	Multiplier float64

	// Jitter between 0 and 1; 0.1 means ±10% of the delay.
	Jitter float64

	// IsRecoverable decides whether an error is worth retrying. If nil,
	// typed errors use their Recoverable flag and plain errors are retried.
	IsRecoverable func(error) bool
}

// DefaultRetryConfig returns a sensible default configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Do executes fn with retries, returning the last error when every
// attempt fails. Context cancellation during backoff aborts immediately.
func (rc RetryConfig) Do(ctx context.Context, fn func() error) error {
	if rc.MaxAttempts < 1 {
		rc.MaxAttempts = 1
	}
	recoverable := rc.IsRecoverable
	if recoverable == nil {
		recoverable = defaultRecoverable
	}

	var lastErr error
	for attempt := 0; attempt < rc.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.New(errors.CodeTimeout, "context canceled during retry", ctx.Err()).
					WithContext("attempt", attempt)
			case <-time.After(rc.backoff(attempt)):
			}
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if !recoverable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (rc RetryConfig) backoff(attempt int) time.Duration {
	multiplier := rc.Multiplier
	if multiplier == 0 {
		multiplier = 2.0
	}
	delay := time.Duration(float64(rc.InitialDelay) * math.Pow(multiplier, float64(attempt-1)))
	if rc.MaxDelay > 0 && delay > rc.MaxDelay {
		delay = rc.MaxDelay
	}
	if rc.Jitter > 0 {
		spread := 2 * rc.Jitter * (rand.Float64() - 0.5)
		delay = time.Duration(float64(delay) * (1 + spread))
		if delay < 0 {
			delay = 0
		}
	}
	return delay
}

func defaultRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if ee, ok := err.(*errors.EmissaryError); ok {
		return ee.Recoverable
	}
	return true
}
