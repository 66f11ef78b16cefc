package presentertest

import (
	"errors"
	"testing"

	"github.com/go-drift/presenter/pkg/core"
	"github.com/go-drift/presenter/pkg/runloop"
)

// DefaultSettleTurns bounds PumpAndSettle when no limit is given.
const DefaultSettleTurns = 100

// ErrSettleTimeout is returned when PumpAndSettle exceeds its turn limit.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: tree did not settle")

// Tester drives an attached presenter tree turn by turn on the test
// goroutine. It provides a FakeClock under ClockToken.
type Tester struct {
	root  *core.Root
	loop  *runloop.Loop
	clock *FakeClock
	last  runloop.TurnStats
}

// NewTester creates a tester with an attached root.
// Call Cleanup when done, or use NewTesterWithT instead.
func NewTester() *Tester {
	root := core.NewRoot(nil)
	clk := NewFakeClock()
	core.Provide[Clock](root.Registry(), ClockToken, clk)
	root.Attach()
	return &Tester{
		root:  root,
		loop:  runloop.New(root.Scheduler()),
		clock: clk,
	}
}

// NewTesterWithT creates a tester that cleans up via t.Cleanup.
func NewTesterWithT(t testing.TB) *Tester {
	tester := NewTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup detaches the whole tree, running every OnDetach hook.
func (t *Tester) Cleanup() {
	if t.root.IsAttached() {
		t.root.Detach()
	}
}

// Root returns the tester's root.
func (t *Tester) Root() *core.Root {
	return t.root
}

// Scheduler returns the root's scheduler.
func (t *Tester) Scheduler() *core.Scheduler {
	return t.root.Scheduler()
}

// Loop returns the run loop pumped by the tester.
func (t *Tester) Loop() *runloop.Loop {
	return t.loop
}

// Clock returns the fake clock.
func (t *Tester) Clock() *FakeClock {
	return t.clock
}

// Mount adds nodes as children of the root, attaching them.
func (t *Tester) Mount(nodes ...core.Node) {
	for _, n := range nodes {
		t.root.AddChild(n)
		n.AttachToRoot(t.root)
	}
}

// Unmount removes a node previously mounted on the root.
func (t *Tester) Unmount(node core.Node) {
	t.root.RemoveChild(node)
}

// Dispatch queues a callback for the next Pump. Safe from any goroutine.
func (t *Tester) Dispatch(callback func()) {
	t.loop.Dispatch(callback)
}

// Pump runs one turn: queued callbacks, then a scheduler flush.
func (t *Tester) Pump() runloop.TurnStats {
	t.last = t.loop.RunTurn()
	return t.last
}

// LastTurn returns the stats of the most recent Pump.
func (t *Tester) LastTurn() runloop.TurnStats {
	return t.last
}

// PumpAndSettle pumps until no callback is queued and no update is pending.
// A maxTurns of zero or less means DefaultSettleTurns.
func (t *Tester) PumpAndSettle(maxTurns int) error {
	if maxTurns <= 0 {
		maxTurns = DefaultSettleTurns
	}
	t.loop.RunUntilIdle(maxTurns)
	if t.loop.Queued() > 0 || t.Scheduler().HasPending() {
		return ErrSettleTimeout
	}
	return nil
}
