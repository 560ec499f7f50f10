package dataproxy

import (
	"context"
	"errors"
	"time"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
)

// WithBackoff retries fn while it returns ErrUnavailable, using exponential
// backoff (the delay starts at base and doubles after each failed attempt,
// with no upper bound), up to maxAttempts total calls. Any other error (or
// success) returns immediately. It is the caller's responsibility to
// decide whether a DataProxy/Translator call is retry-eligible; only
// ErrUnavailable is treated as transient.
func WithBackoff(ctx context.Context, maxAttempts int, base time.Duration, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	delay := base
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, anyvarerr.ErrUnavailable) {
			return err
		}
		if attempt == maxAttempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}
