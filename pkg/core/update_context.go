package core

import "strings"

// UpdateReason is a bit set describing why a view is receiving state.
type UpdateReason uint8

const (
	// ReasonBind marks the push performed when a view is bound.
	ReasonBind UpdateReason = 1 << iota
	// ReasonState marks an update caused by a state change.
	ReasonState
	// ReasonLayout marks a structural change: the view should recompute layout
	// rather than patch in place.
	ReasonLayout
)

func (r UpdateReason) String() string {
	if r == 0 {
		return "none"
	}
	var parts []string
	if r&ReasonBind != 0 {
		parts = append(parts, "bind")
	}
	if r&ReasonState != 0 {
		parts = append(parts, "state")
	}
	if r&ReasonLayout != 0 {
		parts = append(parts, "layout")
	}
	return strings.Join(parts, "|")
}

// ViewUpdateContext describes the update cycle a state push belongs to.
// The framework produces and forwards it; Payload is never inspected.
type ViewUpdateContext struct {
	// Reasons merges every reason requested for the presenter during the tick.
	Reasons UpdateReason
	// Cycle is the scheduler flush counter at delivery time.
	Cycle uint64
	// Payload is the last non-nil payload passed to InvalidateLayout.
	Payload any
}

// Has reports whether reason is part of this update.
func (c ViewUpdateContext) Has(reason UpdateReason) bool {
	return c.Reasons&reason != 0
}

// NeedsLayout reports whether the view should perform a full refresh.
func (c ViewUpdateContext) NeedsLayout() bool {
	return c.Has(ReasonLayout) || c.Has(ReasonBind)
}
