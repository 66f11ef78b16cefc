package core

import (
	"testing"

	"github.com/go-drift/presenter/pkg/errors"
)

type counter struct {
	Count int
	Title string
}

// recordingView captures every snapshot pushed into it.
type recordingView[S any] struct {
	id       string
	applied  []S
	contexts []ViewUpdateContext
	onApply  func(S)
}

func newRecordingView[S any](id string) *recordingView[S] {
	return &recordingView[S]{id: id}
}

func (v *recordingView[S]) Apply(state S, ctx ViewUpdateContext) {
	v.applied = append(v.applied, state)
	v.contexts = append(v.contexts, ctx)
	if v.onApply != nil {
		v.onApply(state)
	}
}

func (v *recordingView[S]) ReuseID() string { return v.id }

func (v *recordingView[S]) last() S {
	var zero S
	if len(v.applied) == 0 {
		return zero
	}
	return v.applied[len(v.applied)-1]
}

// captureHandler records reported errors instead of logging them.
type captureHandler struct {
	lifecycle []*errors.LifecycleError
	updates   []*errors.UpdateError
	panics    []*errors.PanicError
}

func (h *captureHandler) HandleError(err *errors.LifecycleError) {
	h.lifecycle = append(h.lifecycle, err)
}

func (h *captureHandler) HandlePanic(err *errors.PanicError) {
	h.panics = append(h.panics, err)
}

func (h *captureHandler) HandleUpdateError(err *errors.UpdateError) {
	h.updates = append(h.updates, err)
}

// captureErrors installs a captureHandler with assertions disabled for the
// duration of the test.
func captureErrors(t *testing.T) *captureHandler {
	t.Helper()
	h := &captureHandler{}
	oldDebug := DebugMode
	errors.SetHandler(h)
	SetDebugMode(false)
	t.Cleanup(func() {
		errors.SetHandler(nil)
		SetDebugMode(oldDebug)
	})
	return h
}

func newAttachedRoot(t *testing.T) *Root {
	t.Helper()
	root := NewRoot(nil)
	root.Attach()
	if !root.IsAttached() {
		t.Fatal("root did not attach")
	}
	return root
}

// attachedPresenter creates a presenter under root and attaches it.
func attachedPresenter[S any](root *Root, initial S, opts Options[S]) *Presenter[S] {
	p := New(initial, opts)
	root.AddChild(p)
	p.AttachToRoot(root)
	return p
}

func setCount(n int) func(counter) counter {
	return func(c counter) counter {
		c.Count = n
		return c
	}
}
