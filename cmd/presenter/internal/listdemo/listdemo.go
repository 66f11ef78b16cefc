// Package listdemo simulates a recycling list: a data set larger than the
// pool of cell views scrolls through the pool while a background producer
// feeds state changes through the run loop.
package listdemo

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/presenter/pkg/core"
	"github.com/go-drift/presenter/pkg/runloop"
)

// Options configures a demo run.
type Options struct {
	// Items is the size of the data set.
	Items int
	// Cells is the number of pooled cell views.
	Cells int
	// Steps is the number of scroll steps.
	Steps int
	// Mode is the pool ownership model.
	Mode core.ReuseMode
	// Scheduler, if set, is used for the tree. It lets callers apply
	// configuration such as the pass limit.
	Scheduler *core.Scheduler
	// Out receives one rendered frame per step. Nil discards frames.
	Out io.Writer
}

// Stats counts lifecycle events over a run.
type Stats struct {
	Turns     uint64
	Delivered int
	Attached  int
	Detached  int
	Bound     int
	Unbound   int
	// Live is the number of presenters alive just before teardown.
	Live int
}

func (s Stats) String() string {
	return fmt.Sprintf("turns=%d delivered=%d attached=%d detached=%d bound=%d unbound=%d live=%d",
		s.Turns, s.Delivered, s.Attached, s.Detached, s.Bound, s.Unbound, s.Live)
}

// ParseMode maps "holder" and "self" to a ReuseMode.
func ParseMode(name string) (core.ReuseMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "holder", "presenter-holds-view":
		return core.PresenterHoldsView, nil
	case "self", "view-holds-presenter":
		return core.ViewHoldsPresenter, nil
	default:
		return 0, fmt.Errorf("unknown reuse mode %q (want holder or self)", name)
	}
}

func (o Options) validate() error {
	if o.Items < 1 {
		return fmt.Errorf("items must be at least 1, got %d", o.Items)
	}
	if o.Cells < 1 {
		return fmt.Errorf("cells must be at least 1, got %d", o.Cells)
	}
	if o.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", o.Steps)
	}
	return nil
}

// demo is touched only on the loop goroutine.
type demo struct {
	opts    Options
	root    *core.Root
	binding *core.ReusableBinding[int, item]
	cells   []*cell
	stats   Stats
}

// Run executes the simulation and returns its lifecycle counters.
func Run(ctx context.Context, opts Options) (Stats, error) {
	if err := opts.validate(); err != nil {
		return Stats{}, err
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	d := &demo{opts: opts, root: core.NewRoot(opts.Scheduler)}
	list := core.New(struct{}{}, core.Options[struct{}]{Label: "list"})
	d.root.AddChild(list)
	d.binding = core.NewReusableBinding(list, opts.Mode, d.newItem)
	for i := range opts.Cells {
		d.cells = append(d.cells, newCell(fmt.Sprintf("cell-%d", i)))
	}

	loop := runloop.New(d.root.Scheduler())
	loop.OnTurn = func(ts runloop.TurnStats) {
		d.stats.Turns = ts.Turn
		d.stats.Delivered += ts.Delivered
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		_ = loop.Run(runCtx)
		return gctx.Err()
	})
	g.Go(func() error {
		defer stop()
		// call runs fn on the loop goroutine and waits for it.
		call := func(fn func()) error {
			done := make(chan struct{})
			loop.Dispatch(func() {
				defer close(done)
				fn()
			})
			select {
			case <-done:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		}

		if err := call(d.root.Attach); err != nil {
			return err
		}
		for step := range opts.Steps {
			if err := call(func() { d.step(step) }); err != nil {
				return err
			}
			// Rendering runs a turn later, after the step's flush.
			if err := call(func() { d.render(step) }); err != nil {
				return err
			}
		}
		return call(func() {
			d.stats.Live = d.binding.Len()
			d.root.Detach()
		})
	})

	if err := g.Wait(); err != nil {
		return d.stats, err
	}
	return d.stats, nil
}

func (d *demo) newItem(key int) *core.Presenter[item] {
	return core.New(item{Index: key, Title: fmt.Sprintf("Item %d", key)}, core.Options[item]{
		Label:    fmt.Sprintf("item-%d", key),
		OnAttach: func(*core.Scope) { d.stats.Attached++ },
		OnDetach: func() { d.stats.Detached++ },
		OnBind:   func(core.View[item]) { d.stats.Bound++ },
		OnUnbind: func(core.View[item]) { d.stats.Unbound++ },
	})
}

// visible returns the keys on screen at step.
func (d *demo) visible(step int) []int {
	n := min(d.opts.Cells, d.opts.Items)
	offset := step % (d.opts.Items - n + 1)
	keys := make([]int, n)
	for i := range keys {
		keys[i] = offset + i
	}
	return keys
}

// step scrolls the window and ticks one visible item.
func (d *demo) step(step int) {
	keys := d.visible(step)
	for _, key := range keys {
		d.binding.Bind(key, d.cells[key%len(d.cells)])
	}
	target := keys[step%len(keys)]
	if p, ok := d.binding.PresenterFor(target); ok {
		p.SetState(func(it item) item {
			it.Ticks++
			return it
		})
	}
}

var frameStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#7f849c")).
	Padding(0, 1)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#cdd6f4"))

func (d *demo) render(step int) {
	rows := []string{headerStyle.Render(fmt.Sprintf("step %d  %s", step, d.opts.Mode))}
	for _, key := range d.visible(step) {
		rows = append(rows, d.cells[key%len(d.cells)].rendered)
	}
	fmt.Fprintln(d.opts.Out, frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}
