// Package core provides the presenter lifecycle and state-synchronization
// framework.
//
// A [Presenter] owns an immutable-by-convention state snapshot and pushes it
// into at most one bound [View]. Presenters form a tree anchored at a
// [Root]; attaching and detaching propagate through the tree, and the root
// carries the [Registry] of services and global listeners plus the
// [Scheduler] that batches view updates.
//
// # Lifecycle
//
// A presenter moves between three phases:
//
//	Detached --AttachToRoot--> AttachedUnbound --BindView--> AttachedBound
//	         <-DetachFromRoot-                  <-UnbindView-
//
// Attaching runs pre-order (parent, then children in insertion order).
// Detaching unbinds the node's view, detaches its children, then runs the
// node's own OnDetach hook. A child added after its parent attached must be
// attached explicitly.
//
// # State Management
//
// State is changed with pure functions:
//
//	p := core.New(counter{}, core.Options[counter]{})
//	p.SetState(func(c counter) counter {
//	    c.Count = 5
//	    return c
//	})
//
// The new snapshot replaces the old one only if it differs by value
// ([DefaultEqual] uses go-cmp). A change on a bound presenter schedules one
// update; repeated changes before the next [Scheduler.Flush] collapse into a
// single delivery. Views never see state synchronously from SetState.
//
// # Services
//
// Services and listeners are keyed by typed tokens and are reachable only
// through the [Scope] a node receives on attach:
//
//	var Clock = core.NewToken[func() time.Time]("clock")
//	core.Provide(root.Registry(), Clock, time.Now)
//
//	OnAttach: func(scope *core.Scope) {
//	    now := core.UseService(scope, Clock)
//	}
//
// # Recycled Views
//
// [ReusableBinding] maps pooled views to presenters, either keeping one
// presenter per item ([PresenterHoldsView]) or one presenter per view
// ([ViewHoldsPresenter]).
//
// # Threading
//
// Nothing in this package is thread-safe. All calls must happen on the UI
// thread; background work must hop onto it first (see package runloop).
package core
