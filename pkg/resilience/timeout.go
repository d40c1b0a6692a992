package resilience

import (
	"context"
	"time"

	"github.com/jverdu/emissary/pkg/errors"
)

// WithTimeout runs fn under a derived deadline and maps an exceeded
// deadline to a typed timeout error. A zero duration runs fn unchanged.
func WithTimeout(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := fn(ctx)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return errors.New(errors.CodeTimeout, "operation timed out", err).
			WithContext("timeout", d.String())
	}
	return err
}
