package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStateBox_Apply_ReportsChange(t *testing.T) {
	box := NewStateBox(counter{}, nil)

	if !box.Apply(setCount(5)) {
		t.Fatal("expected change from 0 to 5")
	}
	if got := box.Value().Count; got != 5 {
		t.Errorf("Count = %d, want 5", got)
	}
	if box.Apply(setCount(5)) {
		t.Error("setting the same value should not report a change")
	}
}

func TestStateBox_Apply_MutatesCopy(t *testing.T) {
	box := NewStateBox(counter{Count: 1}, nil)
	var seen counter
	box.Apply(func(c counter) counter {
		c.Count = 2
		seen = box.Value()
		return c
	})
	if seen.Count != 1 {
		t.Errorf("current value changed during mutation: %d", seen.Count)
	}
}

func TestStateBox_UnexportedFields(t *testing.T) {
	type private struct {
		n    int
		tags []string
	}
	box := NewStateBox(private{n: 1, tags: []string{"a"}}, nil)

	if box.Replace(private{n: 1, tags: []string{"a"}}) {
		t.Error("structurally equal value should not report a change")
	}
	if !box.Replace(private{n: 1, tags: []string{"a", "b"}}) {
		t.Error("different slice contents should report a change")
	}
}

func TestStateBox_CustomEqual(t *testing.T) {
	caseless := func(a, b counter) bool { return a.Count == b.Count }
	box := NewStateBox(counter{Title: "a"}, caseless)

	if box.Replace(counter{Title: "b"}) {
		t.Error("custom equality ignores Title")
	}
	if diff := cmp.Diff(counter{Title: "a"}, box.Value()); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestStateBox_NilMutator(t *testing.T) {
	box := NewStateBox(counter{}, nil)
	if box.Apply(nil) {
		t.Error("nil mutator should not report a change")
	}
}

func TestStateBox_MutatorPanicPropagates(t *testing.T) {
	box := NewStateBox(counter{Count: 3}, nil)
	defer func() {
		if r := recover(); r != "bad mutator" {
			t.Fatalf("recovered %v, want bad mutator", r)
		}
		if got := box.Value().Count; got != 3 {
			t.Errorf("Count = %d after panic, want 3", got)
		}
	}()
	box.Apply(func(counter) counter { panic("bad mutator") })
}
