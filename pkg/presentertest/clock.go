package presentertest

import (
	"sync"
	"time"

	"github.com/go-drift/presenter/pkg/core"
)

// Clock is the time source presenters look up through ClockToken.
type Clock interface {
	Now() time.Time
}

// ClockToken is the service token under which a Tester provides its clock.
var ClockToken = core.NewToken[Clock]("presentertest.clock")

// FakeClock provides controllable time for deterministic tests.
// All methods are safe for concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a FakeClock starting at a fixed epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set sets the clock to an exact time.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
