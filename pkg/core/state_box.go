package core

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// EqualFunc reports whether two state snapshots are equal by value.
type EqualFunc[S any] func(a, b S) bool

var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// DefaultEqual compares snapshots structurally with go-cmp. Unexported fields
// are included and Equal methods on the state type are honoured.
func DefaultEqual[S any](a, b S) bool {
	return cmp.Equal(a, b, exportAll)
}

// StateBox holds a presenter's current state snapshot and detects whether a
// mutation actually changed it.
//
// StateBox is NOT thread-safe. It must only be used from the UI thread.
type StateBox[S any] struct {
	value S
	equal EqualFunc[S]
}

// NewStateBox creates a StateBox holding initial.
// A nil equal uses [DefaultEqual].
func NewStateBox[S any](initial S, equal EqualFunc[S]) *StateBox[S] {
	if equal == nil {
		equal = DefaultEqual[S]
	}
	return &StateBox[S]{value: initial, equal: equal}
}

// Value returns the current snapshot.
func (b *StateBox[S]) Value() S {
	return b.value
}

// Apply passes a copy of the current snapshot to mutate and stores the result
// if it differs from the current snapshot. It reports whether the value changed.
// A panic inside mutate propagates to the caller and leaves the box untouched.
func (b *StateBox[S]) Apply(mutate func(S) S) bool {
	if mutate == nil {
		return false
	}
	return b.Replace(mutate(b.value))
}

// Replace stores next if it differs from the current snapshot.
func (b *StateBox[S]) Replace(next S) bool {
	if b.equal(b.value, next) {
		return false
	}
	b.value = next
	return true
}
