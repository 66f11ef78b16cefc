// Package presentertest provides a harness for testing presenters without a
// real UI.
//
// # Quick Start
//
// Create a tester, mount presenters, bind fake views and pump turns:
//
//	func TestCounter(t *testing.T) {
//	    tester := presentertest.NewTesterWithT(t)
//	    p := core.New(counter{}, core.Options[counter]{})
//	    tester.Mount(p)
//
//	    view := presentertest.NewFakeView[counter]("counter")
//	    p.BindView(view)
//
//	    tester.Dispatch(func() { p.Set(counter{Count: 1}) })
//	    tester.Pump()
//
//	    if view.Last().Count != 1 {
//	        t.Error("expected count 1")
//	    }
//	}
//
// # Snapshot Testing
//
// Capture and compare the presenter tree structure:
//
//	tester.CaptureSnapshot().MatchesFile(t, "testdata/tree.snapshot.json")
//
// Update snapshots with:
//
//	PRESENTER_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Time
//
// The tester provides a [FakeClock] under [ClockToken] so presenters that
// read the time are deterministic:
//
//	tester.Clock().Advance(time.Minute)
package presentertest
