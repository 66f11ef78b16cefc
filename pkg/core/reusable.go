package core

import "github.com/go-drift/presenter/pkg/errors"

// ReuseMode selects who owns whom when views are pooled.
type ReuseMode int

const (
	// PresenterHoldsView keeps one long-lived presenter per item. Only the
	// view binding cycles as the item scrolls on and off screen.
	PresenterHoldsView ReuseMode = iota
	// ViewHoldsPresenter gives each pooled view at most one presenter. When
	// the view is reassigned to other content the old presenter is detached
	// and a new one is created.
	ViewHoldsPresenter
)

func (m ReuseMode) String() string {
	switch m {
	case PresenterHoldsView:
		return "presenter-holds-view"
	case ViewHoldsPresenter:
		return "view-holds-presenter"
	default:
		return "unknown"
	}
}

// ReusableView is a pooled view. ReuseID must stay stable while the pool
// recycles the view.
type ReusableView[S any] interface {
	View[S]
	ReuseID() string
}

type reuseSlot[K comparable, S any] struct {
	view      ReusableView[S]
	key       K
	presenter *Presenter[S]
}

// ReusableBinding tracks which presenter currently occupies each pooled
// view. Presenters it creates are children of parent.
//
// Bind and Unbind are idempotent: repeating them without an intervening
// opposite call changes nothing and never registers or releases listeners
// twice.
type ReusableBinding[K comparable, S any] struct {
	parent Node
	mode   ReuseMode
	create func(key K) *Presenter[S]

	held    map[K]*Presenter[S]
	slots   map[string]*reuseSlot[K, S]
	showing map[K]string
}

// NewReusableBinding creates a binding whose presenters hang off parent.
func NewReusableBinding[K comparable, S any](parent Node, mode ReuseMode, create func(key K) *Presenter[S]) *ReusableBinding[K, S] {
	return &ReusableBinding[K, S]{
		parent:  parent,
		mode:    mode,
		create:  create,
		held:    make(map[K]*Presenter[S]),
		slots:   make(map[string]*reuseSlot[K, S]),
		showing: make(map[K]string),
	}
}

// Mode returns the ownership model.
func (b *ReusableBinding[K, S]) Mode() ReuseMode {
	return b.mode
}

// Bind shows the item identified by key in view and returns the presenter
// now bound to it. The parent must be attached.
func (b *ReusableBinding[K, S]) Bind(key K, view ReusableView[S]) *Presenter[S] {
	if view == nil || !b.parent.IsAttached() {
		errors.Assert(DebugMode, &errors.LifecycleError{
			Op:    "core.ReusableBinding.Bind",
			Kind:  errors.KindInvalidTransition,
			Node:  b.parent.Label(),
			Phase: b.parent.Phase().String(),
			Err:   errors.ErrInvalidTransition,
		})
		return nil
	}

	id := view.ReuseID()
	slot := b.slots[id]
	if slot != nil && slot.key == key && slot.presenter != nil && slot.presenter.View() == View[S](view) {
		return slot.presenter
	}

	if b.mode == PresenterHoldsView {
		return b.bindHeld(key, id, view, slot)
	}
	return b.bindOwned(key, id, view, slot)
}

func (b *ReusableBinding[K, S]) bindHeld(key K, id string, view ReusableView[S], slot *reuseSlot[K, S]) *Presenter[S] {
	if slot != nil {
		b.vacate(id, slot)
	}
	p := b.held[key]
	if p == nil {
		p = b.spawn(key)
		b.held[key] = p
	}
	if oldID, ok := b.showing[key]; ok && oldID != id {
		if old := b.slots[oldID]; old != nil {
			b.vacate(oldID, old)
		}
	}
	b.slots[id] = &reuseSlot[K, S]{view: view, key: key, presenter: p}
	b.showing[key] = id
	p.BindView(view)
	return p
}

func (b *ReusableBinding[K, S]) bindOwned(key K, id string, view ReusableView[S], slot *reuseSlot[K, S]) *Presenter[S] {
	if slot != nil && slot.presenter != nil {
		if slot.key == key {
			slot.view = view
			if slot.presenter.IsBound() {
				slot.presenter.UnbindView()
			}
			slot.presenter.BindView(view)
			return slot.presenter
		}
		b.destroy(slot.presenter)
	}
	p := b.spawn(key)
	b.slots[id] = &reuseSlot[K, S]{view: view, key: key, presenter: p}
	p.BindView(view)
	return p
}

// Unbind releases whatever presenter occupies view. In PresenterHoldsView
// mode the presenter survives for a later Bind; in ViewHoldsPresenter mode
// it stays owned by the view until the view is rebound or discarded.
func (b *ReusableBinding[K, S]) Unbind(view ReusableView[S]) {
	if view == nil {
		return
	}
	id := view.ReuseID()
	slot := b.slots[id]
	if slot == nil {
		return
	}
	if b.mode == PresenterHoldsView {
		b.vacate(id, slot)
		return
	}
	if p := slot.presenter; p != nil && p.IsBound() && p.View() == View[S](slot.view) {
		p.UnbindView()
	}
}

// Discard forgets view because the pool destroyed it. In ViewHoldsPresenter
// mode its presenter is detached and removed.
func (b *ReusableBinding[K, S]) Discard(view ReusableView[S]) {
	if view == nil {
		return
	}
	id := view.ReuseID()
	slot := b.slots[id]
	if slot == nil {
		return
	}
	if b.mode == PresenterHoldsView {
		b.vacate(id, slot)
		return
	}
	b.destroy(slot.presenter)
	delete(b.slots, id)
}

// Release drops the item identified by key from the data set, detaching and
// removing every presenter created for it.
func (b *ReusableBinding[K, S]) Release(key K) {
	if b.mode == PresenterHoldsView {
		if id, ok := b.showing[key]; ok {
			b.vacate(id, b.slots[id])
		}
		if p := b.held[key]; p != nil {
			b.destroy(p)
			delete(b.held, key)
		}
		return
	}
	for id, slot := range b.slots {
		if slot.key == key {
			b.destroy(slot.presenter)
			delete(b.slots, id)
		}
	}
}

// PresenterFor returns a live presenter created for key.
func (b *ReusableBinding[K, S]) PresenterFor(key K) (*Presenter[S], bool) {
	if b.mode == PresenterHoldsView {
		p, ok := b.held[key]
		return p, ok
	}
	for _, slot := range b.slots {
		if slot.key == key && slot.presenter != nil {
			return slot.presenter, true
		}
	}
	return nil, false
}

// Occupant returns the presenter currently bound to view.
func (b *ReusableBinding[K, S]) Occupant(view ReusableView[S]) (*Presenter[S], bool) {
	if view == nil {
		return nil, false
	}
	slot := b.slots[view.ReuseID()]
	if slot == nil || slot.presenter == nil || slot.presenter.View() != View[S](view) {
		return nil, false
	}
	return slot.presenter, true
}

// Len returns the number of live presenters.
func (b *ReusableBinding[K, S]) Len() int {
	if b.mode == PresenterHoldsView {
		return len(b.held)
	}
	n := 0
	for _, slot := range b.slots {
		if slot.presenter != nil {
			n++
		}
	}
	return n
}

// vacate unbinds slot's presenter from its view and forgets the pairing.
func (b *ReusableBinding[K, S]) vacate(id string, slot *reuseSlot[K, S]) {
	if slot == nil {
		return
	}
	if p := slot.presenter; p != nil && p.IsBound() && p.View() == View[S](slot.view) {
		p.UnbindView()
	}
	delete(b.slots, id)
	if b.showing[slot.key] == id {
		delete(b.showing, slot.key)
	}
}

func (b *ReusableBinding[K, S]) spawn(key K) *Presenter[S] {
	p := b.create(key)
	b.parent.AddChild(p)
	p.AttachToRoot(b.parent.Root())
	return p
}

func (b *ReusableBinding[K, S]) destroy(p *Presenter[S]) {
	if p == nil {
		return
	}
	if p.Parent() == b.parent {
		b.parent.RemoveChild(p)
	} else if p.IsAttached() {
		p.DetachFromRoot()
	}
}
