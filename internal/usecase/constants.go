package usecase

import "time"

const (
	// DefaultMaxAttempts bounds how many times the engine runs one operation
	// before giving up with domain.ErrConcurrencyExhausted.
	DefaultMaxAttempts = 5

	// DefaultAttemptTimeout is the deadline for a single read-compute-commit attempt.
	DefaultAttemptTimeout = 5 * time.Second

	// DefaultStatisticsTTL is how long computed statistics stay cached.
	DefaultStatisticsTTL = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// statisticsCacheKey holds the cached statistics document.
	statisticsCacheKey = "cantina:statistics"
)

// Engine operation names used in logs and metrics.
const (
	OperationCredit   = "credit"
	OperationDebit    = "debit"
	OperationSetLimit = "set_limit"
	OperationRemove   = "remove"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock is the wall clock in UTC.
var SystemClock Clock = systemClock{}
