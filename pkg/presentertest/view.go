package presentertest

import "github.com/go-drift/presenter/pkg/core"

// Update is one state push received by a FakeView.
type Update[S any] struct {
	State   S
	Context core.ViewUpdateContext
}

// FakeView records every snapshot pushed into it. It implements
// core.ReusableView so it can stand in for pooled cells.
type FakeView[S any] struct {
	id      string
	updates []Update[S]

	// OnApply, if set, runs after each recorded update.
	OnApply func(S, core.ViewUpdateContext)
}

// NewFakeView creates a view whose ReuseID is id.
func NewFakeView[S any](id string) *FakeView[S] {
	return &FakeView[S]{id: id}
}

// Apply records the update.
func (v *FakeView[S]) Apply(state S, ctx core.ViewUpdateContext) {
	v.updates = append(v.updates, Update[S]{State: state, Context: ctx})
	if v.OnApply != nil {
		v.OnApply(state, ctx)
	}
}

// ReuseID returns the id given at construction.
func (v *FakeView[S]) ReuseID() string {
	return v.id
}

// Updates returns every recorded update in order.
func (v *FakeView[S]) Updates() []Update[S] {
	return v.updates
}

// Count returns the number of recorded updates.
func (v *FakeView[S]) Count() int {
	return len(v.updates)
}

// Last returns the most recent state, or the zero value.
func (v *FakeView[S]) Last() S {
	if len(v.updates) == 0 {
		var zero S
		return zero
	}
	return v.updates[len(v.updates)-1].State
}

// Reset forgets recorded updates.
func (v *FakeView[S]) Reset() {
	v.updates = nil
}
