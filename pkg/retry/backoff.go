package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Config defines retry behavior. MaxRetries counts attempts, so 1 means no retry.
type Config struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Multiplier    float64
	JitterEnabled bool
}

// DefaultConfig is used for connecting to backing stores at startup.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    10,
		InitialDelay:  2 * time.Second,
		MaxDelay:      60 * time.Second,
		Multiplier:    2.0,
		JitterEnabled: true,
	}
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so WithBackoff gives up on it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// WithBackoff runs fn until it succeeds, returns a Permanent error, the
// attempts run out or ctx is done. Delays grow by Multiplier up to MaxDelay.
func WithBackoff(ctx context.Context, cfg Config, logger *zap.Logger, operation string, fn func() error) error {
	attempts := max(cfg.MaxRetries, 1)
	delay := cfg.InitialDelay

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s cancelled: %w", operation, err)
		}

		err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info("Operation succeeded after retries",
					zap.String("operation", operation),
					zap.Int("attempts", attempt))
			}
			return nil
		}

		var p *permanentError
		if errors.As(err, &p) {
			return fmt.Errorf("%s: %w", operation, p.err)
		}
		if attempt >= attempts {
			return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, err)
		}

		wait := cfg.jitter(delay)
		logger.Warn("Operation failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", attempts),
			zap.Duration("retry_in", wait),
			zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s cancelled: %w", operation, ctx.Err())
		case <-timer.C:
		}
		delay = cfg.next(delay)
	}
}

// next grows d by the multiplier, capped at MaxDelay.
func (c Config) next(d time.Duration) time.Duration {
	if c.Multiplier > 1 {
		d = time.Duration(float64(d) * c.Multiplier)
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// jitter spreads d over [0.85d, 1.15d) when enabled.
func (c Config) jitter(d time.Duration) time.Duration {
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	if !c.JitterEnabled || d <= 0 {
		return d
	}
	return time.Duration(float64(d) * (0.85 + 0.3*rand.Float64()))
}
