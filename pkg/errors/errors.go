// Package errors provides structured error handling for the presenter framework.
//
// Lifecycle misuse (binding a view twice, mutating a detached presenter) is
// never returned to the caller. It is reported to the global [ErrorHandler]
// and, when assertions are enabled, raised as a panic.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInvalidTransition indicates an operation attempted in an
	// incompatible lifecycle phase (e.g., bind while bound).
	KindInvalidTransition
	// KindStaleReference indicates an operation against a presenter, view or
	// scope that has already been detached or unbound.
	KindStaleReference
	// KindUpdate indicates a failure while pushing state into a view.
	KindUpdate
	// KindConfig indicates an invalid configuration value.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidTransition:
		return "invalid-transition"
	case KindStaleReference:
		return "stale-reference"
	case KindUpdate:
		return "update"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Sentinel errors matched by [LifecycleError.Is].
var (
	ErrInvalidTransition = stderrors.New("invalid lifecycle transition")
	ErrStaleReference    = stderrors.New("stale reference")
	ErrUpdateLoop        = stderrors.New("update passes exhausted")
)

// LifecycleError represents misuse of the presenter lifecycle.
type LifecycleError struct {
	// Op is the operation that failed (e.g., "core.Presenter.BindView").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Node identifies the presenter involved, if any.
	Node string
	// Phase is the lifecycle phase the node was in when the error occurred.
	Phase string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *LifecycleError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s [%s] node=%s phase=%s: %v", e.Op, e.Kind, e.Node, e.Phase, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel matching this error's kind.
func (e *LifecycleError) Is(target error) bool {
	switch target {
	case ErrInvalidTransition:
		return e.Kind == KindInvalidTransition
	case ErrStaleReference:
		return e.Kind == KindStaleReference
	}
	return false
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "runloop.Loop.RunTurn").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// UpdateError represents a failure while delivering state to a view.
type UpdateError struct {
	// Presenter is the identity of the presenter being updated.
	Presenter string
	// View is the dynamic type name of the receiving view.
	View string
	// Cycle is the scheduler flush the update belonged to.
	Cycle uint64
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *UpdateError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.Apply() cycle=%d: %v", e.View, e.Cycle, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("update of %s failed cycle=%d: %v", e.Presenter, e.Cycle, e.Err)
	}
	return fmt.Sprintf("unknown update error in %s", e.Presenter)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the framework.
type ErrorHandler interface {
	// HandleError is called for lifecycle and configuration errors.
	HandleError(err *LifecycleError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleUpdateError is called when pushing state into a view fails.
	HandleUpdateError(err *UpdateError)
}
