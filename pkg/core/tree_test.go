package core

import (
	"fmt"
	"runtime"
	"slices"
	"testing"

	"github.com/go-drift/presenter/pkg/errors"
)

// traced builds a presenter that logs its lifecycle hooks into events.
func traced(name string, events *[]string) *Presenter[counter] {
	return New(counter{}, Options[counter]{
		Label: name,
		OnAttach: func(scope *Scope) {
			*events = append(*events, "attach:"+name)
		},
		OnUnbind: func(View[counter]) {
			*events = append(*events, "unbind:"+name)
		},
		OnDetach: func() {
			*events = append(*events, "detach:"+name)
		},
	})
}

func TestTree_AttachPropagatesToChildren(t *testing.T) {
	const n = 4
	var events []string
	root := NewRoot(nil)
	parent := traced("parent", &events)
	root.AddChild(parent)

	var seenRoots []*Root
	for i := range n {
		name := fmt.Sprintf("child%d", i)
		child := New(counter{}, Options[counter]{
			Label: name,
			OnAttach: func(scope *Scope) {
				events = append(events, "attach:"+name)
				seenRoots = append(seenRoots, scope.Root())
			},
		})
		parent.AddChild(child)
	}

	root.Attach()

	want := []string{"attach:parent", "attach:child0", "attach:child1", "attach:child2", "attach:child3"}
	if !slices.Equal(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	if len(seenRoots) != n {
		t.Fatalf("children attached = %d, want %d", len(seenRoots), n)
	}
	for i, r := range seenRoots {
		if r != root {
			t.Errorf("child%d saw root %p, want %p", i, r, root)
		}
	}
	for _, child := range parent.Children() {
		if child.Depth() != 2 {
			t.Errorf("%s depth = %d, want 2", child.Label(), child.Depth())
		}
	}
}

func TestTree_DetachUnbindsThenDetachesChildrenFirst(t *testing.T) {
	var events []string
	root := NewRoot(nil)
	parent := traced("parent", &events)
	childA := traced("a", &events)
	childB := traced("b", &events)
	root.AddChild(parent)
	parent.AddChild(childA)
	parent.AddChild(childB)
	root.Attach()

	parent.BindView(newRecordingView[counter]("p"))
	childA.BindView(newRecordingView[counter]("a"))
	childB.BindView(newRecordingView[counter]("b"))
	events = nil

	parent.DetachFromRoot()

	want := []string{"unbind:parent", "unbind:a", "detach:a", "unbind:b", "detach:b", "detach:parent"}
	if !slices.Equal(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	for _, n := range []Node{parent, childA, childB} {
		if n.IsAttached() || n.Root() != nil || n.Scope() != nil {
			t.Errorf("%s still attached", n.Label())
		}
	}
}

func TestTree_DetachHookSeesLiveScope(t *testing.T) {
	root := NewRoot(nil)
	tok := NewToken[string]("greeting")
	Provide(root.Registry(), tok, "hello")

	var scope *Scope
	var got string
	p := New(counter{}, Options[counter]{
		OnAttach: func(s *Scope) { scope = s },
		OnDetach: func() { got, _ = Service(scope, tok) },
	})
	root.AddChild(p)
	root.Attach()
	root.Detach()

	if got != "hello" {
		t.Errorf("service in OnDetach = %q, want hello", got)
	}
	if scope.Active() {
		t.Error("scope should close after detach")
	}
}

func TestTree_ChildAddedAfterAttach_NotAutoAttached(t *testing.T) {
	root := newAttachedRoot(t)
	parent := attachedPresenter(root, counter{}, Options[counter]{})

	late := New(counter{}, Options[counter]{})
	parent.AddChild(late)
	if late.IsAttached() {
		t.Fatal("AddChild must not attach")
	}

	late.AttachToRoot(root)
	if !late.IsAttached() || late.Depth() != 2 {
		t.Errorf("explicit attach failed: attached=%v depth=%d", late.IsAttached(), late.Depth())
	}
}

func TestTree_AttachRequiresAttachedParent(t *testing.T) {
	h := captureErrors(t)
	root := newAttachedRoot(t)

	orphan := New(counter{}, Options[counter]{})
	orphan.AttachToRoot(root)

	parent := New(counter{}, Options[counter]{})
	child := New(counter{}, Options[counter]{})
	parent.AddChild(child)
	child.AttachToRoot(root)

	if orphan.IsAttached() || child.IsAttached() {
		t.Error("nodes without an attached parent must not attach")
	}
	if len(h.lifecycle) != 2 {
		t.Errorf("reported %d errors, want 2", len(h.lifecycle))
	}
}

func TestTree_AttachTwice_Rejected(t *testing.T) {
	h := captureErrors(t)
	attaches := 0
	root := newAttachedRoot(t)
	p := New(counter{}, Options[counter]{OnAttach: func(*Scope) { attaches++ }})
	root.AddChild(p)
	p.AttachToRoot(root)
	p.AttachToRoot(root)

	if attaches != 1 {
		t.Errorf("OnAttach ran %d times, want 1", attaches)
	}
	if len(h.lifecycle) != 1 || h.lifecycle[0].Kind != errors.KindInvalidTransition {
		t.Errorf("reported %v, want one invalid transition", h.lifecycle)
	}
}

func TestTree_RootCannotAttachElsewhere(t *testing.T) {
	h := captureErrors(t)
	a := NewRoot(nil)
	b := NewRoot(nil)
	a.AttachToRoot(b)
	a.AddChild(b)

	if a.IsAttached() {
		t.Error("root attached under another root")
	}
	if len(a.Children()) != 0 {
		t.Error("root added as a child")
	}
	if len(h.lifecycle) != 2 {
		t.Errorf("reported %d errors, want 2", len(h.lifecycle))
	}
}

func TestTree_AddChildWithParent_Rejected(t *testing.T) {
	h := captureErrors(t)
	a := New(counter{}, Options[counter]{})
	b := New(counter{}, Options[counter]{})
	c := New(counter{}, Options[counter]{})
	a.AddChild(c)
	b.AddChild(c)

	if c.Parent() != Node(a) {
		t.Error("child was re-parented")
	}
	if len(b.Children()) != 0 {
		t.Error("second parent should not list the child")
	}
	if len(h.lifecycle) != 1 {
		t.Errorf("reported %d errors, want 1", len(h.lifecycle))
	}
}

func TestTree_RemoveChild_DetachesIt(t *testing.T) {
	var events []string
	root := newAttachedRoot(t)
	p := traced("p", &events)
	root.AddChild(p)
	p.AttachToRoot(root)

	root.RemoveChild(p)

	if p.IsAttached() || p.Parent() != nil {
		t.Error("removed child should be detached and parentless")
	}
	if !slices.Contains(events, "detach:p") {
		t.Errorf("events = %v, want detach:p", events)
	}

	// A removed child may join another parent.
	other := attachedPresenter(root, counter{}, Options[counter]{})
	other.AddChild(p)
	if p.Parent() != Node(other) {
		t.Error("removed child could not be re-parented")
	}
}

func TestTree_ParentReferenceIsWeak(t *testing.T) {
	child := New(counter{}, Options[counter]{})
	func() {
		parent := New(counter{}, Options[counter]{})
		parent.AddChild(child)
		if child.Parent() == nil {
			t.Fatal("expected parent while it is alive")
		}
	}()
	runtime.GC()
	if child.Parent() != nil {
		t.Error("child kept its parent alive")
	}
}

func TestTree_SchedulerDeliversParentsFirst(t *testing.T) {
	root := newAttachedRoot(t)
	var order []string
	mk := func(name string) *Presenter[counter] {
		return New(counter{}, Options[counter]{
			OnUpdate: func(_ View[counter], c counter, ctx ViewUpdateContext) {
				if ctx.Has(ReasonState) {
					order = append(order, name)
				}
			},
		})
	}
	parent := mk("parent")
	child := mk("child")
	root.AddChild(parent)
	parent.AddChild(child)
	parent.AttachToRoot(root)
	parent.BindView(newRecordingView[counter]("p"))
	child.BindView(newRecordingView[counter]("c"))

	child.SetState(setCount(1))
	parent.SetState(setCount(1))
	root.Scheduler().Flush()

	if !slices.Equal(order, []string{"parent", "child"}) {
		t.Errorf("delivery order = %v, want [parent child]", order)
	}
}

func TestWalk_PreOrder(t *testing.T) {
	root := NewRoot(nil)
	a := New(counter{}, Options[counter]{Label: "a"})
	b := New(counter{}, Options[counter]{Label: "b"})
	c := New(counter{}, Options[counter]{Label: "c"})
	root.AddChild(a)
	a.AddChild(b)
	root.AddChild(c)

	var seen []string
	Walk(root, func(n Node) bool {
		seen = append(seen, n.Label())
		return true
	})
	if want := []string{"root", "a", "b", "c"}; !slices.Equal(seen, want) {
		t.Errorf("Walk = %v, want %v", seen, want)
	}

	seen = nil
	Walk(root, func(n Node) bool {
		seen = append(seen, n.Label())
		return n.Label() != "a"
	})
	if want := []string{"root", "a"}; !slices.Equal(seen, want) {
		t.Errorf("Walk with stop = %v, want %v", seen, want)
	}
}
