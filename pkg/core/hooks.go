package core

import "github.com/go-drift/presenter/pkg/errors"

// UseService looks up a service from scope, returning the zero value when it
// is missing.
//
// Example:
//
//	p := core.New(rowState{}, core.Options[rowState]{
//	    OnAttach: func(scope *core.Scope) {
//	        clock = core.UseService(scope, ClockToken)
//	    },
//	})
func UseService[T any](scope *Scope, tok Token[T]) T {
	svc, _ := Service(scope, tok)
	return svc
}

// UseListener registers l for the lifetime of scope.
//
// Example:
//
//	OnAttach: func(scope *core.Scope) {
//	    core.UseListener(scope, ThemeChanged, func(t Theme) {
//	        p.SetState(func(s rowState) rowState { s.Theme = t; return s })
//	    })
//	}
func UseListener[L any](scope *Scope, kind ListenerKind[L], l L) {
	Listen(scope, kind, l)
}

// UseDisposer registers cleanup to run when scope closes.
func UseDisposer(scope *Scope, cleanup func()) {
	scope.OnClose(cleanup)
}

// ListenWhileBound registers l on p's root until p's current view is unbound
// or p detaches, whichever comes first. Call it from OnBind for listeners
// that drive the bound view.
func ListenWhileBound[S, L any](p *Presenter[S], kind ListenerKind[L], l L) {
	if p.view == nil {
		p.fail("core.ListenWhileBound", errors.KindInvalidTransition, "not bound")
		return
	}
	cancel := Listen(p.scope, kind, l)
	p.OnUnbindCleanup(cancel)
}

// UseController creates a controller and disposes it when scope closes.
func UseController[C Disposable](scope *Scope, create func() C) C {
	controller := create()
	scope.OnClose(controller.Dispose)
	return controller
}

// Disposable is a resource released when its owning scope closes.
type Disposable interface {
	Dispose()
}
