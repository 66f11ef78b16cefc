package core

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-drift/presenter/pkg/errors"
)

// View is a renderable view instance that accepts state snapshots.
// The host UI framework owns its lifetime; a presenter only references it
// between BindView and UnbindView.
type View[S any] interface {
	Apply(state S, ctx ViewUpdateContext)
}

// Options configures a Presenter at construction.
type Options[S any] struct {
	// Label identifies the presenter in error reports. Defaults to its ID.
	Label string
	// Equal compares snapshots. Nil uses DefaultEqual.
	Equal EqualFunc[S]

	// OnAttach runs after the presenter attaches, before its children do.
	// Services and listeners may only be used from scope until OnDetach.
	OnAttach func(scope *Scope)
	// OnDetach runs after the children have detached.
	OnDetach func()
	// OnBind runs when a view is captured, before the bind push.
	OnBind func(view View[S])
	// OnUnbind runs before the view reference is released.
	OnUnbind func(view View[S])
	// OnUpdate pushes state into view. Nil calls view.Apply.
	OnUpdate func(view View[S], state S, ctx ViewUpdateContext)
}

// Presenter owns a state snapshot and pushes it into at most one bound view.
//
// Lifecycle: a presenter starts detached, attaches into a tree under a
// [Root], binds and unbinds views any number of times while attached, and
// finally detaches. Misuse (binding while bound, mutating while detached) is
// reported to the error handler and ignored, or panics when [DebugMode] is on.
//
// Presenter is NOT thread-safe. It must only be used from the UI thread.
type Presenter[S any] struct {
	nodeBase
	box           *StateBox[S]
	opts          Options[S]
	view          View[S]
	bindDisposers []func()
}

// New creates a detached presenter holding initial.
func New[S any](initial S, opts Options[S]) *Presenter[S] {
	p := &Presenter[S]{
		box:  NewStateBox(initial, opts.Equal),
		opts: opts,
	}
	p.init(p, opts.Label)
	return p
}

// State returns the current snapshot.
func (p *Presenter[S]) State() S {
	return p.box.Value()
}

// Phase returns the current lifecycle phase.
func (p *Presenter[S]) Phase() Phase {
	switch {
	case !p.attached:
		return PhaseDetached
	case p.view != nil:
		return PhaseAttachedBound
	default:
		return PhaseAttachedUnbound
	}
}

// View returns the bound view, or nil.
func (p *Presenter[S]) View() View[S] {
	return p.view
}

// IsBound reports whether a view is bound.
func (p *Presenter[S]) IsBound() bool {
	return p.view != nil
}

// BindView captures view and immediately pushes the current state into it.
// The presenter must be attached and unbound.
func (p *Presenter[S]) BindView(view View[S]) {
	const op = "core.Presenter.BindView"
	switch {
	case view == nil:
		p.fail(op, errors.KindInvalidTransition, "nil view")
		return
	case !p.attached:
		p.fail(op, errors.KindInvalidTransition, "not attached")
		return
	case p.view != nil:
		p.fail(op, errors.KindInvalidTransition, "already bound")
		return
	}
	p.view = view
	if p.opts.OnBind != nil {
		p.opts.OnBind(view)
	}
	// OnBind may have unbound or detached us.
	if p.view != view {
		return
	}
	p.push(view, ViewUpdateContext{
		Reasons: ReasonBind,
		Cycle:   p.root.scheduler.Cycle(),
	})
}

// UnbindView releases the bound view. No state reaches it afterwards.
func (p *Presenter[S]) UnbindView() {
	const op = "core.Presenter.UnbindView"
	if !p.attached {
		p.fail(op, errors.KindStaleReference, "not attached")
		return
	}
	if p.view == nil {
		p.fail(op, errors.KindInvalidTransition, "not bound")
		return
	}
	p.releaseView()
}

func (p *Presenter[S]) releaseView() {
	view := p.view
	if p.root != nil {
		p.root.scheduler.cancel(p)
	}
	if p.opts.OnUnbind != nil {
		p.opts.OnUnbind(view)
	}
	disposers := p.bindDisposers
	p.bindDisposers = nil
	for i := len(disposers) - 1; i >= 0; i-- {
		disposers[i]()
	}
	p.view = nil
}

// OnUnbindCleanup registers cleanup to run when the current view is
// unbound. Use it for listeners that target the bound view.
func (p *Presenter[S]) OnUnbindCleanup(cleanup func()) {
	if cleanup == nil {
		return
	}
	if p.view == nil {
		p.fail("core.Presenter.OnUnbindCleanup", errors.KindInvalidTransition, "not bound")
		return
	}
	p.bindDisposers = append(p.bindDisposers, cleanup)
}

// SetState applies mutate to a copy of the current state and stores the
// result if it differs by value. A change on a bound presenter schedules one
// update for the next flush; a change on an unbound presenter is delivered by
// the next bind. It reports whether the state changed.
//
// Calling SetState on a detached presenter is a stale reference: it is
// reported and ignored. A panic inside mutate propagates to the caller.
func (p *Presenter[S]) SetState(mutate func(S) S) bool {
	if !p.attached {
		p.fail("core.Presenter.SetState", errors.KindStaleReference, "not attached")
		return false
	}
	if !p.box.Apply(mutate) {
		return false
	}
	if p.view != nil {
		p.root.scheduler.request(p, ReasonState, nil)
	}
	return true
}

// Set replaces the state with next. See SetState.
func (p *Presenter[S]) Set(next S) bool {
	return p.SetState(func(S) S { return next })
}

// InvalidateLayout schedules a structural update for the bound view even if
// the state is unchanged. payload is forwarded untouched in the
// ViewUpdateContext.
func (p *Presenter[S]) InvalidateLayout(payload any) {
	if !p.attached {
		p.fail("core.Presenter.InvalidateLayout", errors.KindStaleReference, "not attached")
		return
	}
	if p.view != nil {
		p.root.scheduler.request(p, ReasonLayout, payload)
	}
}

// UpdatePending reports whether an update is waiting for the next flush.
func (p *Presenter[S]) UpdatePending() bool {
	return p.root != nil && p.root.scheduler.isPending(p)
}

func (p *Presenter[S]) flushUpdate(ctx ViewUpdateContext) bool {
	if !p.attached || p.view == nil {
		return false
	}
	p.push(p.view, ctx)
	return true
}

// push delivers the current state to view. A panicking view is reported and
// does not interrupt the caller.
func (p *Presenter[S]) push(view View[S], ctx ViewUpdateContext) {
	defer func() {
		if r := recover(); r != nil {
			errors.ReportUpdateError(&errors.UpdateError{
				Presenter:  p.Label(),
				View:       reflect.TypeOf(view).String(),
				Cycle:      ctx.Cycle,
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	state := p.box.Value()
	if p.opts.OnUpdate != nil {
		p.opts.OnUpdate(view, state, ctx)
		return
	}
	view.Apply(state, ctx)
}

func (p *Presenter[S]) didAttach() {
	if p.opts.OnAttach != nil {
		p.opts.OnAttach(p.scope)
	}
}

func (p *Presenter[S]) willDetach() {
	if p.view != nil {
		p.releaseView()
	}
	p.root.scheduler.cancel(p)
}

func (p *Presenter[S]) didDetach() {
	if p.opts.OnDetach != nil {
		p.opts.OnDetach()
	}
}

func (p *Presenter[S]) String() string {
	return fmt.Sprintf("Presenter(%s, %s)", p.Label(), p.Phase())
}
