package presentertest

import (
	"sync"
	"testing"

	"github.com/go-drift/presenter/pkg/core"
	"github.com/go-drift/presenter/pkg/errors"
)

// ErrorRecorder is an errors.ErrorHandler that keeps everything reported.
type ErrorRecorder struct {
	mu        sync.Mutex
	lifecycle []*errors.LifecycleError
	panics    []*errors.PanicError
	updates   []*errors.UpdateError
}

// RecordErrors installs an ErrorRecorder as the global handler and disables
// debug assertions until the test ends.
func RecordErrors(t testing.TB) *ErrorRecorder {
	t.Helper()
	rec := &ErrorRecorder{}
	oldDebug := core.DebugMode
	errors.SetHandler(rec)
	core.SetDebugMode(false)
	t.Cleanup(func() {
		errors.SetHandler(nil)
		core.SetDebugMode(oldDebug)
	})
	return rec
}

func (r *ErrorRecorder) HandleError(err *errors.LifecycleError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lifecycle = append(r.lifecycle, err)
}

func (r *ErrorRecorder) HandlePanic(err *errors.PanicError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panics = append(r.panics, err)
}

func (r *ErrorRecorder) HandleUpdateError(err *errors.UpdateError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, err)
}

// Lifecycle returns recorded lifecycle errors.
func (r *ErrorRecorder) Lifecycle() []*errors.LifecycleError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.LifecycleError(nil), r.lifecycle...)
}

// Panics returns recorded panics.
func (r *ErrorRecorder) Panics() []*errors.PanicError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.PanicError(nil), r.panics...)
}

// UpdateErrors returns recorded update errors.
func (r *ErrorRecorder) UpdateErrors() []*errors.UpdateError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.UpdateError(nil), r.updates...)
}

// Count returns the total number of recorded errors.
func (r *ErrorRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lifecycle) + len(r.panics) + len(r.updates)
}
