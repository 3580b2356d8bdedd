package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64

	// Retryable decides whether a failed attempt is worth repeating. Nil retries everything.
	Retryable func(error) bool
}

func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:       3,
		InitialBackoff:    200 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

type Func[T any] func(ctx context.Context) (T, error)

// Do runs fn until it succeeds, the attempts run out, the error is not retryable or ctx ends.
func Do[T any](ctx context.Context, cfg *Config, log *logrus.Entry, op string, fn Func[T]) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		backoff := Backoff(attempt-1, cfg)
		log.WithFields(logrus.Fields{
			"operation":    op,
			"attempt":      attempt,
			"max_attempts": cfg.MaxAttempts,
			"backoff":      backoff.String(),
		}).WithError(err).Warn("operation failed, retrying")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, fmt.Errorf("operation %q failed after %d attempts: %w", op, cfg.MaxAttempts, lastErr)
}

// Backoff is the wait before attempt n+1, capped at MaxBackoff.
func Backoff(n int, cfg *Config) time.Duration {
	backoff := time.Duration(float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffMultiplier, float64(n)))
	if backoff > cfg.MaxBackoff {
		return cfg.MaxBackoff
	}
	return backoff
}
