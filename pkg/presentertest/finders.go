package presentertest

import (
	"fmt"

	"github.com/go-drift/presenter/pkg/core"
)

// Finder locates nodes in a presenter tree.
type Finder interface {
	// Evaluate returns all matching nodes under root in pre-order.
	Evaluate(root core.Node) []core.Node
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	nodes  []core.Node
	finder Finder
}

// Find evaluates finder against the tester's root.
func (t *Tester) Find(finder Finder) FinderResult {
	return FinderResult{nodes: finder.Evaluate(t.root), finder: finder}
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() core.Node {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("Finder found no nodes: %s", r.describe()))
	}
	return r.nodes[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() core.Node {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []core.Node {
	return r.nodes
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.nodes)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.nodes) > 0
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

type labelFinder struct {
	label string
}

func (f *labelFinder) Evaluate(root core.Node) []core.Node {
	return collectMatches(root, func(n core.Node) bool {
		return n.Label() == f.label
	})
}

func (f *labelFinder) Description() string {
	return fmt.Sprintf("ByLabel(%q)", f.label)
}

// ByLabel matches nodes whose label equals label.
func ByLabel(label string) Finder {
	return &labelFinder{label: label}
}

type phaseFinder struct {
	phase core.Phase
}

func (f *phaseFinder) Evaluate(root core.Node) []core.Node {
	return collectMatches(root, func(n core.Node) bool {
		return n.Phase() == f.phase
	})
}

func (f *phaseFinder) Description() string {
	return fmt.Sprintf("ByPhase(%s)", f.phase)
}

// ByPhase matches nodes currently in phase.
func ByPhase(phase core.Phase) Finder {
	return &phaseFinder{phase: phase}
}

type predicateFinder struct {
	fn   func(core.Node) bool
	desc string
}

func (f *predicateFinder) Evaluate(root core.Node) []core.Node {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate matches nodes for which fn returns true.
func ByPredicate(desc string, fn func(core.Node) bool) Finder {
	return &predicateFinder{fn: fn, desc: desc}
}

func collectMatches(root core.Node, match func(core.Node) bool) []core.Node {
	var out []core.Node
	core.Walk(root, func(n core.Node) bool {
		if match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}
