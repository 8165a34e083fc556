package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/cantina/internal/domain"
)

// RetryConfig bounds the optimistic-concurrency loop.
type RetryConfig struct {
	MaxAttempts     int
	AttemptTimeout  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns the production defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     DefaultMaxAttempts,
		AttemptTimeout:  DefaultAttemptTimeout,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     200 * time.Millisecond,
	}
}

// Retrier runs a read-compute-commit attempt until it commits, fails for a
// reason other than a version conflict, or runs out of attempts.
type Retrier struct {
	cfg      RetryConfig
	logger   zerolog.Logger
	recorder LedgerRecorder
}

// NewRetrier creates a Retrier. Zero fields in cfg fall back to defaults.
func NewRetrier(cfg RetryConfig, logger zerolog.Logger, recorder LedgerRecorder) *Retrier {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = def.AttemptTimeout
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}

	return &Retrier{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
	}
}

// Run executes attempt with a per-attempt deadline. Only
// domain.ErrVersionConflict is retried; exhausting the budget yields
// domain.ErrConcurrencyExhausted and a deadline yields domain.ErrTimeout.
func (r *Retrier) Run(ctx context.Context, operation string, attempt func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = r.cfg.MaxInterval
	b.MaxElapsedTime = 0

	attempts := 0

	err := backoff.RetryNotify(func() error {
		attempts++

		attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.AttemptTimeout)
		defer cancel()

		err := attempt(attemptCtx)
		if err == nil {
			return nil
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return backoff.Permanent(fmt.Errorf("%w: %s attempt %d: %v", domain.ErrTimeout, operation, attempts, err))
		}

		if !errors.Is(err, domain.ErrVersionConflict) {
			return backoff.Permanent(err)
		}

		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.MaxAttempts-1)), ctx),
		func(err error, wait time.Duration) {
			if r.recorder != nil {
				r.recorder.RecordRetry(operation)
			}
			r.logger.Warn().
				Err(err).
				Str("operation", operation).
				Int("attempt", attempts).
				Dur("backoff", wait).
				Msg("version conflict, retrying")
		})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrVersionConflict):
		return fmt.Errorf("%w: %s gave up after %d attempts", domain.ErrConcurrencyExhausted, operation, attempts)
	case errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrTimeout):
		return fmt.Errorf("%w: %s: %v", domain.ErrTimeout, operation, err)
	default:
		return err
	}
}

// MaxAttempts returns the configured attempt budget.
func (r *Retrier) MaxAttempts() int {
	return r.cfg.MaxAttempts
}
