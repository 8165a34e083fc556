package postgres

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/iho/cantina/internal/usecase"
)

// ULIDGenerator issues account, entry and event IDs. IDs from one generator
// sort in the order they were issued, even within a millisecond, so the
// statement can break timestamp ties by ID.
type ULIDGenerator struct {
	mu      sync.Mutex
	clock   usecase.Clock
	entropy *ulid.MonotonicEntropy
}

// NewULIDGenerator creates a ULIDGenerator stamped with the wall clock.
func NewULIDGenerator() *ULIDGenerator {
	return NewULIDGeneratorWithClock(usecase.SystemClock)
}

// NewULIDGeneratorWithClock stamps IDs with the given clock, so they agree
// with the timestamps the engine writes.
func NewULIDGeneratorWithClock(clock usecase.Clock) *ULIDGenerator {
	return &ULIDGenerator{
		clock:   clock,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Generate returns a new ULID.
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.clock.Now()), g.entropy).String()
}
