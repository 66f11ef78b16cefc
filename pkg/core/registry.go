package core

import "slices"

type tokenKey struct {
	name string
}

// Token is a typed key for a service stored in a [Registry].
// Tokens compare by identity: two tokens created with the same name are
// distinct.
type Token[T any] struct {
	key *tokenKey
}

// NewToken creates a service token.
func NewToken[T any](name string) Token[T] {
	return Token[T]{key: &tokenKey{name: name}}
}

func (t Token[T]) String() string {
	if t.key == nil {
		return "<nil token>"
	}
	return t.key.name
}

// ListenerKind is a typed key for a family of global listeners.
type ListenerKind[L any] struct {
	key *tokenKey
}

// NewListenerKind creates a listener kind.
func NewListenerKind[L any](name string) ListenerKind[L] {
	return ListenerKind[L]{key: &tokenKey{name: name}}
}

func (k ListenerKind[L]) String() string {
	if k.key == nil {
		return "<nil listener kind>"
	}
	return k.key.name
}

type listenerEntry struct {
	listener any
	removed  bool
}

// Registry stores the services and global listeners owned by a [Root].
// Presenters reach it only through their [Scope].
//
// Registry is NOT thread-safe. It must only be used from the UI thread.
type Registry struct {
	services  map[*tokenKey]any
	listeners map[*tokenKey][]*listenerEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		services:  make(map[*tokenKey]any),
		listeners: make(map[*tokenKey][]*listenerEntry),
	}
}

// Provide registers svc under tok, replacing any previous value.
func Provide[T any](r *Registry, tok Token[T], svc T) {
	r.services[tok.key] = svc
}

// Revoke removes the service registered under tok.
func Revoke[T any](r *Registry, tok Token[T]) {
	delete(r.services, tok.key)
}

func lookup[T any](r *Registry, tok Token[T]) (T, bool) {
	svc, ok := r.services[tok.key].(T)
	return svc, ok
}

func (r *Registry) addListener(key *tokenKey, l any) (remove func()) {
	entry := &listenerEntry{listener: l}
	r.listeners[key] = append(r.listeners[key], entry)
	return func() {
		if entry.removed {
			return
		}
		entry.removed = true
		r.listeners[key] = slices.DeleteFunc(r.listeners[key], func(e *listenerEntry) bool {
			return e == entry
		})
		if len(r.listeners[key]) == 0 {
			delete(r.listeners, key)
		}
	}
}

// Broadcast invokes fn for every listener registered for kind, in
// registration order. Listeners added by fn are not called during this
// broadcast; listeners removed by fn are skipped.
func Broadcast[L any](r *Registry, kind ListenerKind[L], fn func(L)) {
	if fn == nil {
		return
	}
	for _, entry := range slices.Clone(r.listeners[kind.key]) {
		if entry.removed {
			continue
		}
		if l, ok := entry.listener.(L); ok {
			fn(l)
		}
	}
}

// ListenerCount returns the number of live listeners for kind.
func ListenerCount[L any](r *Registry, kind ListenerKind[L]) int {
	return len(r.listeners[kind.key])
}
