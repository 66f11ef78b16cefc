package runloop

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-drift/presenter/pkg/core"
	"github.com/go-drift/presenter/pkg/errors"
)

type countView struct {
	mu      sync.Mutex
	applied []int
}

func (v *countView) Apply(state int, _ core.ViewUpdateContext) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.applied = append(v.applied, state)
}

func (v *countView) snapshot() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]int(nil), v.applied...)
}

func newTree() (*core.Root, *core.Presenter[int], *countView) {
	root := core.NewRoot(nil)
	p := core.New(0, core.Options[int]{Label: "counter"})
	root.AddChild(p)
	root.Attach()
	view := &countView{}
	p.BindView(view)
	return root, p, view
}

func TestLoop_RunTurn_CoalescesDispatchedMutations(t *testing.T) {
	root, p, view := newTree()
	loop := New(root.Scheduler())

	for i := 1; i <= 5; i++ {
		loop.Dispatch(func() { p.Set(i) })
	}
	stats := loop.RunTurn()

	if stats.Callbacks != 5 {
		t.Errorf("Callbacks = %d, want 5", stats.Callbacks)
	}
	if stats.Delivered != 1 {
		t.Errorf("Delivered = %d, want 1", stats.Delivered)
	}
	got := view.snapshot()
	if len(got) != 2 || got[1] != 5 {
		t.Errorf("applied = %v, want [0 5]", got)
	}
}

func TestLoop_DispatchDuringTurnWaitsForNextTurn(t *testing.T) {
	root, _, _ := newTree()
	loop := New(root.Scheduler())

	var order []string
	loop.Dispatch(func() {
		order = append(order, "first")
		loop.Dispatch(func() { order = append(order, "second") })
	})

	loop.RunTurn()
	if len(order) != 1 {
		t.Fatalf("order after one turn = %v", order)
	}
	if n := loop.RunUntilIdle(10); n != 1 {
		t.Errorf("RunUntilIdle ran %d turns, want 1", n)
	}
	if len(order) != 2 || order[1] != "second" {
		t.Errorf("order = %v, want [first second]", order)
	}
}

func TestLoop_CallbackPanicIsReported(t *testing.T) {
	var panics []*errors.PanicError
	errors.SetHandler(&panicRecorder{onPanic: func(err *errors.PanicError) {
		panics = append(panics, err)
	}})
	defer errors.SetHandler(nil)

	root, p, view := newTree()
	loop := New(root.Scheduler())
	loop.Dispatch(func() { panic("callback failed") })
	loop.Dispatch(func() { p.Set(7) })

	loop.RunTurn()

	if len(panics) != 1 || panics[0].Op != "runloop.Loop.Dispatch" {
		t.Fatalf("panics = %v, want one from runloop.Loop.Dispatch", panics)
	}
	if got := view.snapshot(); got[len(got)-1] != 7 {
		t.Errorf("later callbacks should still run, applied = %v", got)
	}
}

func TestLoop_OnTurnAndChainedWakeHook(t *testing.T) {
	root, p, _ := newTree()
	chained := 0
	root.Scheduler().OnNeedsFlush = func() { chained++ }
	loop := New(root.Scheduler())

	var stats []TurnStats
	loop.OnTurn = func(s TurnStats) { stats = append(stats, s) }

	p.Set(1)
	loop.RunTurn()

	if chained != 1 {
		t.Errorf("previous OnNeedsFlush ran %d times, want 1", chained)
	}
	if len(stats) != 1 || stats[0].Turn != 1 || stats[0].Cycle != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestLoop_StateChangeInsideTurnDoesNotWake(t *testing.T) {
	root, p, view := newTree()
	loop := New(root.Scheduler())

	loop.Dispatch(func() { p.Set(3) })
	<-loop.wake // consumed by Run in a live loop

	stats := loop.RunTurn()
	if stats.Delivered != 1 {
		t.Errorf("Delivered = %d, want 1", stats.Delivered)
	}
	if got := view.snapshot(); got[len(got)-1] != 3 {
		t.Errorf("applied = %v, want last value 3", got)
	}
	if n := len(loop.wake); n != 0 {
		t.Errorf("turn left %d wakeups queued, want 0", n)
	}

	p.Set(4)
	if n := len(loop.wake); n != 1 {
		t.Errorf("change outside a turn queued %d wakeups, want 1", n)
	}
}

func TestLoop_RunProcessesBackgroundWork(t *testing.T) {
	root, p, view := newTree()
	loop := New(root.Scheduler())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	runCtx, stop := context.WithCancel(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := loop.Run(runCtx)
		if stderrors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		var workers sync.WaitGroup
		for i := 1; i <= 10; i++ {
			workers.Add(1)
			go func() {
				defer workers.Done()
				loop.Dispatch(func() {
					p.SetState(func(n int) int { return max(n, i) })
				})
			}()
		}
		workers.Wait()

		done := make(chan struct{})
		loop.Dispatch(func() { close(done) })
		select {
		case <-done:
		case <-gctx.Done():
			return gctx.Err()
		}
		// One more turn guarantees the flush that followed the last callback.
		flushed := make(chan struct{})
		loop.Dispatch(func() { close(flushed) })
		<-flushed
		stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		t.Fatalf("Wait() = %v", err)
	}
	got := view.snapshot()
	if got[len(got)-1] != 10 {
		t.Errorf("final state = %v, want last value 10", got)
	}
	if len(got) > 11 {
		t.Errorf("applied %d snapshots for 10 changes plus bind", len(got))
	}
}

func TestLoop_RunTwice(t *testing.T) {
	root, _, _ := newTree()
	loop := New(root.Scheduler())
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()
	loop.Dispatch(func() { close(started) })
	<-started

	if err := loop.Run(ctx); !stderrors.Is(err, ErrRunning) {
		t.Errorf("second Run = %v, want ErrRunning", err)
	}
	cancel()
	if err := <-errc; !stderrors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

type panicRecorder struct {
	errors.LogHandler
	onPanic func(*errors.PanicError)
}

func (h *panicRecorder) HandlePanic(err *errors.PanicError) {
	h.onPanic(err)
}
