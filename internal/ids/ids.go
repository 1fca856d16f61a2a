package ids

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out ULIDs that are strictly increasing for the lifetime of
// the process, even when several are requested within one millisecond or the
// wall clock steps backwards.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	lastMS  uint64
	now     func() time.Time
}

// NewGenerator returns a Generator reading randomness from crypto/rand.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// New returns the next identifier as its 26-character Crockford base32 form.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := ulid.Timestamp(g.now())
	if ms < g.lastMS {
		ms = g.lastMS
	}

	id, err := ulid.New(ms, g.entropy)
	if err != nil {
		// Entropy overflow within a single millisecond; move to the next one.
		ms++
		id = ulid.MustNew(ms, g.entropy)
	}
	g.lastMS = ms
	return id.String()
}

var defaultGenerator = NewGenerator()

// New returns a new identifier from the process-wide generator. Every record
// in the journal, whatever its table, draws from this one sequence.
func New() string {
	return defaultGenerator.New()
}

// Valid reports whether s parses as a ULID.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// Time extracts the creation time encoded in an identifier.
func Time(s string) (time.Time, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse id %q: %w", s, err)
	}
	return ulid.Time(id.Time()), nil
}
