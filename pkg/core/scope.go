package core

import (
	"fmt"

	"github.com/go-drift/presenter/pkg/errors"
)

// Scope is the window during which a node may reach the root's services and
// listeners. It is opened when the node attaches and closed when it detaches;
// every use after closing is a stale reference.
type Scope struct {
	root      *Root
	owner     Node
	closed    bool
	disposers []func()
}

func newScope(root *Root, owner Node) *Scope {
	return &Scope{root: root, owner: owner}
}

// Root returns the root the scope belongs to.
func (s *Scope) Root() *Root {
	return s.root
}

// Owner returns the node the scope was opened for.
func (s *Scope) Owner() Node {
	return s.owner
}

// Active reports whether the scope is still open.
func (s *Scope) Active() bool {
	return s != nil && !s.closed
}

// OnClose registers cleanup to run when the scope closes. Cleanups run in
// reverse registration order. The returned function unregisters cleanup
// without running it.
func (s *Scope) OnClose(cleanup func()) func() {
	if cleanup == nil {
		return func() {}
	}
	if !s.check("core.Scope.OnClose") {
		return func() {}
	}
	index := len(s.disposers)
	s.disposers = append(s.disposers, cleanup)
	return func() {
		if index < len(s.disposers) {
			s.disposers[index] = nil
		}
	}
}

func (s *Scope) close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	for i := len(s.disposers) - 1; i >= 0; i-- {
		if s.disposers[i] != nil {
			s.disposers[i]()
		}
	}
	s.disposers = nil
}

// check reports whether the scope is usable, reporting a stale reference
// otherwise.
func (s *Scope) check(op string) bool {
	if s.Active() {
		return true
	}
	lerr := &errors.LifecycleError{
		Op:   op,
		Kind: errors.KindStaleReference,
		Err:  fmt.Errorf("%w: scope is closed", errors.ErrStaleReference),
	}
	if s != nil && s.owner != nil {
		lerr.Node = s.owner.Label()
		lerr.Phase = s.owner.Phase().String()
	}
	errors.Assert(DebugMode, lerr)
	return false
}

// Service returns the service registered under tok on the scope's root.
// It returns the zero value and false when the service is missing or the
// scope is closed.
func Service[T any](s *Scope, tok Token[T]) (T, bool) {
	if !s.check("core.Service") {
		var zero T
		return zero, false
	}
	return lookup(s.root.registry, tok)
}

// Listen registers l for kind on the scope's root. The listener is removed
// when the returned cancel function is called or when the scope closes,
// whichever comes first.
func Listen[L any](s *Scope, kind ListenerKind[L], l L) (cancel func()) {
	if !s.check("core.Listen") {
		return func() {}
	}
	remove := s.root.registry.addListener(kind.key, l)
	unregister := s.OnClose(remove)
	return func() {
		unregister()
		remove()
	}
}

// NotifyGlobal invokes fn for every listener registered for kind on the
// scope's root, in registration order.
func NotifyGlobal[L any](s *Scope, kind ListenerKind[L], fn func(L)) {
	if !s.check("core.NotifyGlobal") {
		return
	}
	Broadcast(s.root.registry, kind, fn)
}
