package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// handlerSlot wraps the installed handler so atomic.Pointer can hold an
// interface value.
type handlerSlot struct {
	h ErrorHandler
}

var current atomic.Pointer[handlerSlot]

func init() {
	current.Store(&handlerSlot{h: &LogHandler{}})
}

// SetHandler installs h as the global error handler.
// Pass nil to restore a fresh LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	current.Store(&handlerSlot{h: h})
}

// Handler returns the installed error handler.
func Handler() ErrorHandler {
	return current.Load().h
}

// Report sends a lifecycle error to the global handler, stamping it with the
// current time if unset.
func Report(err *LifecycleError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandleError(err)
}

// ReportPanic sends a recovered panic to the global handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandlePanic(err)
}

// ReportUpdateError sends a failed view update to the global handler.
func ReportUpdateError(err *UpdateError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandleUpdateError(err)
}

// Assert reports err and, when strict is true, panics with it.
// Callers treat the non-strict case as a no-op and return right after.
func Assert(strict bool, err *LifecycleError) {
	if err == nil {
		return
	}
	if err.StackTrace == "" {
		err.StackTrace = CaptureStack()
	}
	Report(err)
	if strict {
		panic(err)
	}
}

// Recover reports a panic in progress. It must be deferred directly:
//
//	defer errors.Recover("runloop.Loop.Dispatch")
func Recover(op string) {
	if r := recover(); r != nil {
		reportRecovered(op, r)
	}
}

// RecoverWithCallback is Recover followed by callback(r) for callers that
// need to react to the panic value.
func RecoverWithCallback(op string, callback func(r any)) {
	r := recover()
	if r == nil {
		return
	}
	reportRecovered(op, r)
	if callback != nil {
		callback(r)
	}
}

func reportRecovered(op string, r any) {
	ReportPanic(&PanicError{
		Op:         op,
		Value:      r,
		StackTrace: CaptureStack(),
	})
}

// CaptureStack formats the caller's stack, one "function\n\tfile:line" entry
// per frame. Frames inside this package are omitted.
func CaptureStack() string {
	var pcs [32]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !isOwnFrame(frame.Function) {
			fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

const ownPackage = "github.com/go-drift/presenter/pkg/errors."

func isOwnFrame(fn string) bool {
	return strings.HasPrefix(fn, ownPackage)
}
