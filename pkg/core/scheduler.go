package core

import (
	"fmt"
	"slices"

	"github.com/go-drift/presenter/pkg/errors"
)

// DefaultMaxPasses bounds how many times a single Flush re-runs for updates
// requested while it was delivering.
const DefaultMaxPasses = 8

// updateTarget is implemented by presenters that can receive a state push.
type updateTarget interface {
	Depth() int
	flushUpdate(ctx ViewUpdateContext) bool
}

type pendingUpdate struct {
	target    updateTarget
	reasons   UpdateReason
	payload   any
	cancelled bool
	delivered bool
}

// Scheduler coalesces update requests into one delivery per presenter per
// flush. It plays the role of the run loop's end-of-turn hook: the host calls
// Flush once the current unit of work is finished.
//
// Scheduler is NOT thread-safe. All calls must happen on the UI thread.
type Scheduler struct {
	pending  []*pendingUpdate
	index    map[updateTarget]*pendingUpdate
	inFlight map[updateTarget]*pendingUpdate
	cycle    uint64
	flushing bool

	// MaxPasses limits re-entrant passes within one Flush.
	// Zero means DefaultMaxPasses.
	MaxPasses int

	// OnNeedsFlush is called when the pending set goes from empty to
	// non-empty, signalling the host that a flush should be scheduled.
	OnNeedsFlush func()
}

// NewScheduler creates a new Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		index:    make(map[updateTarget]*pendingUpdate),
		inFlight: make(map[updateTarget]*pendingUpdate),
	}
}

// request marks target as needing an update. Repeated requests before the
// next delivery merge their reasons; the last non-nil payload wins.
func (s *Scheduler) request(target updateTarget, reasons UpdateReason, payload any) {
	if entry, ok := s.inFlight[target]; ok && !entry.delivered && !entry.cancelled {
		entry.merge(reasons, payload)
		return
	}
	if entry, ok := s.index[target]; ok {
		entry.merge(reasons, payload)
		return
	}
	entry := &pendingUpdate{target: target, reasons: reasons, payload: payload}
	s.index[target] = entry
	s.pending = append(s.pending, entry)

	if len(s.index) == 1 && !s.flushing && s.OnNeedsFlush != nil {
		s.OnNeedsFlush()
	}
}

func (e *pendingUpdate) merge(reasons UpdateReason, payload any) {
	e.reasons |= reasons
	if payload != nil {
		e.payload = payload
	}
}

// cancel drops any undelivered update for target. The entry leaves the
// pending queue too, so nothing keeps a detached target reachable.
func (s *Scheduler) cancel(target updateTarget) {
	if entry, ok := s.index[target]; ok {
		entry.cancelled = true
		delete(s.index, target)
		s.pending = slices.DeleteFunc(s.pending, func(e *pendingUpdate) bool {
			return e == entry
		})
	}
	if entry, ok := s.inFlight[target]; ok {
		entry.cancelled = true
	}
}

func (s *Scheduler) isPending(target updateTarget) bool {
	if _, ok := s.index[target]; ok {
		return true
	}
	entry, ok := s.inFlight[target]
	return ok && !entry.delivered && !entry.cancelled
}

// HasPending reports whether any update is waiting for a flush.
func (s *Scheduler) HasPending() bool {
	return len(s.index) > 0
}

// Pending returns the number of presenters waiting for a flush.
func (s *Scheduler) Pending() int {
	return len(s.index)
}

// Cycle returns the number of flushes that delivered at least one pass.
func (s *Scheduler) Cycle() uint64 {
	return s.cycle
}

// Flushing reports whether a Flush is in progress.
func (s *Scheduler) Flushing() bool {
	return s.flushing
}

func (s *Scheduler) maxPasses() int {
	if s.MaxPasses > 0 {
		return s.MaxPasses
	}
	return DefaultMaxPasses
}

// Flush delivers every pending update in depth order (ancestors first, then
// request order) and returns the number of views that received state.
//
// Presenters that were unbound or detached since requesting are skipped.
// Updates requested during delivery run in a further pass of the same flush.
// A nested call from inside a delivery is a no-op.
func (s *Scheduler) Flush() int {
	if s.flushing {
		return 0
	}
	if len(s.index) == 0 {
		s.pending = nil
		return 0
	}
	s.flushing = true
	defer func() {
		s.flushing = false
		clear(s.inFlight)
	}()

	s.cycle++
	delivered := 0
	limit := s.maxPasses()
	for pass := 0; len(s.index) > 0; pass++ {
		if pass == limit {
			dropped := len(s.index)
			s.pending = nil
			clear(s.index)
			errors.Report(&errors.LifecycleError{
				Op:         "core.Scheduler.Flush",
				Kind:       errors.KindUpdate,
				Err:        fmt.Errorf("%w: %d presenters still pending after %d passes", errors.ErrUpdateLoop, dropped, limit),
				StackTrace: errors.CaptureStack(),
			})
			break
		}

		batch := s.pending
		s.pending = nil
		clear(s.inFlight)
		for target, entry := range s.index {
			s.inFlight[target] = entry
		}
		clear(s.index)

		slices.SortStableFunc(batch, func(a, b *pendingUpdate) int {
			return a.target.Depth() - b.target.Depth()
		})

		for _, entry := range batch {
			if entry.cancelled {
				continue
			}
			entry.delivered = true
			ctx := ViewUpdateContext{
				Reasons: entry.reasons,
				Cycle:   s.cycle,
				Payload: entry.payload,
			}
			if entry.target.flushUpdate(ctx) {
				delivered++
			}
		}
	}
	return delivered
}
