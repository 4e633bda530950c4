package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time. All expiry comparisons in the engine
// go through it so tests can control time deterministically.
type Clock interface {
	Now() time.Time
}

// System is the production clock backed by time.Now
type System struct{}

// Now returns the current wall-clock time in UTC
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fake is a manually advanced clock. This type is intended for tests only.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake creates a fake clock frozen at the given instant
func NewFake(start time.Time) *Fake {
	return &Fake{now: start.UTC()}
}

// Now returns the fake clock's current instant
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the fake clock forward by d
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
