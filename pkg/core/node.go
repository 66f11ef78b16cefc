package core

import (
	"fmt"
	"slices"
	"weak"

	"github.com/go-drift/presenter/pkg/errors"
	"github.com/google/uuid"
)

// Phase is a node's position in the lifecycle state machine.
type Phase int

const (
	// PhaseDetached is the phase of a node outside any tree.
	PhaseDetached Phase = iota
	// PhaseAttachedUnbound is the phase of an attached node with no view.
	PhaseAttachedUnbound
	// PhaseAttachedBound is the phase of an attached presenter bound to a view.
	PhaseAttachedBound
)

func (p Phase) String() string {
	switch p {
	case PhaseAttachedUnbound:
		return "attached-unbound"
	case PhaseAttachedBound:
		return "attached-bound"
	default:
		return "detached"
	}
}

// Node is a member of a presenter tree. The only implementations are
// [*Root] and [*Presenter].
type Node interface {
	// ID returns the node's unique identity.
	ID() uuid.UUID
	// Label returns the debug label, or the ID when no label was set.
	Label() string
	// Parent returns the parent node, or nil.
	Parent() Node
	// Children returns a copy of the child list in insertion order.
	Children() []Node
	// Depth is the distance from the root, valid while attached.
	Depth() int
	// Phase returns the current lifecycle phase.
	Phase() Phase
	// IsAttached reports whether the node is part of an attached tree.
	IsAttached() bool
	// Root returns the root this node is attached to, or nil.
	Root() *Root
	// Scope returns the scope opened by the current attach, or nil.
	Scope() *Scope
	// AttachToRoot attaches the node and, recursively, its children.
	AttachToRoot(root *Root)
	// DetachFromRoot detaches children first, then the node itself.
	DetachFromRoot()
	// AddChild appends child. It never attaches the child.
	AddChild(child Node)
	// RemoveChild detaches child if needed and removes it.
	RemoveChild(child Node)

	base() *nodeBase
	didAttach()
	willDetach()
	didDetach()
}

// nodeHandle is the target of children's weak parent pointers. The owning
// node keeps it alive; children never do.
type nodeHandle struct {
	node Node
}

type nodeBase struct {
	id       uuid.UUID
	label    string
	self     Node
	handle   *nodeHandle
	parent   weak.Pointer[nodeHandle]
	children []Node
	root     *Root
	depth    int
	attached bool
	scope    *Scope
}

func (n *nodeBase) init(self Node, label string) {
	n.id = uuid.New()
	n.label = label
	n.self = self
	n.handle = &nodeHandle{node: self}
}

func (n *nodeBase) base() *nodeBase { return n }

func (n *nodeBase) didAttach()  {}
func (n *nodeBase) willDetach() {}
func (n *nodeBase) didDetach()  {}

func (n *nodeBase) ID() uuid.UUID {
	return n.id
}

func (n *nodeBase) Label() string {
	if n.label != "" {
		return n.label
	}
	return n.id.String()
}

func (n *nodeBase) Parent() Node {
	if h := n.parent.Value(); h != nil {
		return h.node
	}
	return nil
}

func (n *nodeBase) Children() []Node {
	return slices.Clone(n.children)
}

func (n *nodeBase) Depth() int {
	return n.depth
}

func (n *nodeBase) Phase() Phase {
	if n.attached {
		return PhaseAttachedUnbound
	}
	return PhaseDetached
}

func (n *nodeBase) IsAttached() bool {
	return n.attached
}

func (n *nodeBase) Root() *Root {
	return n.root
}

func (n *nodeBase) Scope() *Scope {
	return n.scope
}

func (n *nodeBase) AttachToRoot(root *Root) {
	const op = "core.Node.AttachToRoot"
	if root == nil {
		n.fail(op, errors.KindInvalidTransition, "nil root")
		return
	}
	if n.attached {
		n.fail(op, errors.KindInvalidTransition, "already attached")
		return
	}
	if self, isRoot := n.self.(*Root); isRoot {
		if self != root {
			n.fail(op, errors.KindInvalidTransition, "a root can only attach to itself")
			return
		}
	} else {
		parent := n.Parent()
		if parent == nil {
			n.fail(op, errors.KindInvalidTransition, "only a root may attach without a parent")
			return
		}
		if !parent.IsAttached() || parent.Root() != root {
			n.fail(op, errors.KindInvalidTransition, "parent is not attached to this root")
			return
		}
	}
	n.attach(root)
}

// attach runs pre-order: the node becomes attached, its hook runs, then every
// current child attaches in insertion order.
func (n *nodeBase) attach(root *Root) {
	n.root = root
	n.depth = 0
	if parent := n.Parent(); parent != nil {
		n.depth = parent.Depth() + 1
	}
	n.attached = true
	n.scope = newScope(root, n.self)
	n.self.didAttach()

	for _, child := range slices.Clone(n.children) {
		if cb := child.base(); !cb.attached && cb.Parent() == n.self {
			cb.attach(root)
		}
	}
}

func (n *nodeBase) DetachFromRoot() {
	if !n.attached {
		n.fail("core.Node.DetachFromRoot", errors.KindStaleReference, "not attached")
		return
	}
	n.detach()
}

// detach runs post-order: the node releases its view, children detach, then
// the node's own hook runs while its scope and root are still reachable.
func (n *nodeBase) detach() {
	n.self.willDetach()
	for _, child := range slices.Clone(n.children) {
		if cb := child.base(); cb.attached {
			cb.detach()
		}
	}
	n.self.didDetach()
	n.scope.close()
	n.scope = nil
	n.attached = false
	n.root = nil
	n.depth = 0
}

func (n *nodeBase) AddChild(child Node) {
	const op = "core.Node.AddChild"
	if child == nil || child == n.self {
		n.fail(op, errors.KindInvalidTransition, "invalid child")
		return
	}
	if _, isRoot := child.(*Root); isRoot {
		n.fail(op, errors.KindInvalidTransition, "a root cannot be a child")
		return
	}
	cb := child.base()
	if cb.Parent() != nil {
		n.fail(op, errors.KindInvalidTransition, fmt.Sprintf("child %s already has a parent", child.Label()))
		return
	}
	cb.parent = weak.Make(n.handle)
	n.children = append(n.children, child)
}

func (n *nodeBase) RemoveChild(child Node) {
	i := slices.Index(n.children, child)
	if i < 0 {
		n.fail("core.Node.RemoveChild", errors.KindStaleReference, "not a child")
		return
	}
	cb := child.base()
	if cb.attached {
		cb.detach()
	}
	n.children = slices.Delete(n.children, i, i+1)
	cb.parent = weak.Pointer[nodeHandle]{}
}

func (n *nodeBase) fail(op string, kind errors.ErrorKind, reason string) {
	sentinel := errors.ErrInvalidTransition
	if kind == errors.KindStaleReference {
		sentinel = errors.ErrStaleReference
	}
	errors.Assert(DebugMode, &errors.LifecycleError{
		Op:    op,
		Kind:  kind,
		Node:  n.Label(),
		Phase: n.self.Phase().String(),
		Err:   fmt.Errorf("%w: %s", sentinel, reason),
	})
}

// Walk visits node and its descendants in pre-order until visit returns false.
func Walk(node Node, visit func(Node) bool) bool {
	if node == nil {
		return true
	}
	if !visit(node) {
		return false
	}
	for _, child := range node.base().children {
		if !Walk(child, visit) {
			return false
		}
	}
	return true
}
