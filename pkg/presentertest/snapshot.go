package presentertest

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/presenter/pkg/core"
)

// UpdateSnapshotsEnv makes MatchesFile rewrite golden files when set to "1".
const UpdateSnapshotsEnv = "PRESENTER_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the presenter tree structure.
type Snapshot struct {
	Tree    *SnapshotNode `json:"tree"`
	Cycle   uint64        `json:"cycle"`
	Pending int           `json:"pending"`
}

// SnapshotNode is one node of a captured tree.
type SnapshotNode struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Phase    string          `json:"phase"`
	Depth    int             `json:"depth"`
	Children []*SnapshotNode `json:"children,omitempty"`
}

// CaptureSnapshot captures the tester's tree.
func (t *Tester) CaptureSnapshot() *Snapshot {
	return CaptureTree(t.root)
}

// CaptureTree captures the subtree rooted at node. Unlabeled nodes get
// stable IDs like "Presenter#0" in pre-order.
func CaptureTree(node core.Node) *Snapshot {
	snap := &Snapshot{}
	if node == nil {
		return snap
	}
	if root := node.Root(); root != nil {
		snap.Cycle = root.Scheduler().Cycle()
		snap.Pending = root.Scheduler().Pending()
	}
	snap.Tree = captureNode(node, &typeCounter{})
	return snap
}

func captureNode(n core.Node, counter *typeCounter) *SnapshotNode {
	typeName := "Presenter"
	if _, ok := n.(*core.Root); ok {
		typeName = "Root"
	}
	id := n.Label()
	if id == n.ID().String() {
		id = counter.next(typeName)
	}
	out := &SnapshotNode{
		ID:    id,
		Type:  typeName,
		Phase: n.Phase().String(),
		Depth: n.Depth(),
	}
	for _, child := range n.Children() {
		out.Children = append(out.Children, captureNode(child, counter))
	}
	return out
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When
// PRESENTER_UPDATE_SNAPSHOTS=1 is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s (-expected +actual)\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to path, creating directories as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a readable diff from other to s, or "" if they are equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	return cmp.Diff(other, s)
}

// typeCounter assigns stable IDs like "Presenter#0", "Presenter#1".
type typeCounter struct {
	counts map[string]int
}

func (c *typeCounter) next(typeName string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[typeName]
	c.counts[typeName] = n + 1
	return fmt.Sprintf("%s#%d", typeName, n)
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
