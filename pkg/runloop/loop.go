// Package runloop drives a presenter tree from a single UI goroutine.
//
// Each turn of the loop runs every callback dispatched since the previous
// turn and then flushes the tree's [core.Scheduler], so state changes made by
// those callbacks reach their views once, at the end of the unit of work.
//
//	loop := runloop.New(root.Scheduler())
//	go func() {
//	    result := fetch()
//	    loop.Dispatch(func() {
//	        p.Set(result) // runs on the UI goroutine
//	    })
//	}()
//	err := loop.Run(ctx)
package runloop

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/presenter/pkg/core"
	"github.com/go-drift/presenter/pkg/errors"
)

// ErrRunning is returned by Run when the loop is already running.
var ErrRunning = stderrors.New("runloop: already running")

// TurnStats describes one completed turn.
type TurnStats struct {
	// Turn is the 1-based turn counter.
	Turn uint64
	// Callbacks is the number of dispatched callbacks run.
	Callbacks int
	// Delivered is the number of views that received state in the flush.
	Delivered int
	// Cycle is the scheduler flush counter after the turn.
	Cycle uint64
	// Duration is the wall time the turn took.
	Duration time.Duration
}

// Loop serializes work onto the goroutine that calls Run or RunTurn.
type Loop struct {
	scheduler *core.Scheduler

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}

	turns   uint64
	inTurn  bool
	running atomic.Bool

	// OnTurn, if set, receives stats after every turn.
	OnTurn func(TurnStats)
}

// New creates a loop that flushes scheduler at the end of every turn.
// The scheduler's OnNeedsFlush hook is chained so state changes made outside
// a turn wake the loop.
func New(scheduler *core.Scheduler) *Loop {
	l := &Loop{
		scheduler: scheduler,
		wake:      make(chan struct{}, 1),
	}
	prev := scheduler.OnNeedsFlush
	scheduler.OnNeedsFlush = func() {
		if prev != nil {
			prev()
		}
		// The running turn flushes before it ends.
		if !l.inTurn {
			l.signal()
		}
	}
	return l
}

// Scheduler returns the scheduler flushed by the loop.
func (l *Loop) Scheduler() *core.Scheduler {
	return l.scheduler
}

// Dispatch schedules callback to run on the loop goroutine during the next
// turn. It is safe to call from any goroutine.
func (l *Loop) Dispatch(callback func()) {
	if callback == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, callback)
	l.mu.Unlock()
	l.signal()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	callbacks := l.queue
	l.queue = nil
	return callbacks
}

// Queued reports how many callbacks wait for the next turn.
func (l *Loop) Queued() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// RunTurn runs the callbacks dispatched so far, in FIFO order, then flushes
// the scheduler. Callbacks dispatched during the turn wait for the next one.
// It must be called from the UI goroutine.
func (l *Loop) RunTurn() TurnStats {
	start := time.Now()
	callbacks := l.drain()
	l.inTurn = true
	defer func() { l.inTurn = false }()
	for _, callback := range callbacks {
		l.invoke(callback)
	}
	delivered := l.scheduler.Flush()
	l.inTurn = false
	l.turns++

	stats := TurnStats{
		Turn:      l.turns,
		Callbacks: len(callbacks),
		Delivered: delivered,
		Cycle:     l.scheduler.Cycle(),
		Duration:  time.Since(start),
	}
	if l.OnTurn != nil {
		l.OnTurn(stats)
	}
	return stats
}

func (l *Loop) invoke(callback func()) {
	defer errors.Recover("runloop.Loop.Dispatch")
	callback()
}

// RunUntilIdle runs turns until no callback is queued and no update is
// pending, or until maxTurns turns have run. It returns the number of turns.
func (l *Loop) RunUntilIdle(maxTurns int) int {
	turns := 0
	for turns < maxTurns && (l.Queued() > 0 || l.scheduler.HasPending()) {
		l.RunTurn()
		turns++
	}
	return turns
}

// Run turns the loop whenever work arrives until ctx is done, and returns
// ctx.Err(). The calling goroutine becomes the UI goroutine: once Run has
// started, presenters must only be touched from dispatched callbacks.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer l.running.Store(false)

	if l.Queued() > 0 || l.scheduler.HasPending() {
		l.RunTurn()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
			l.RunTurn()
		}
	}
}
