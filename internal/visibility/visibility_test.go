package visibility_test

import (
	"testing"
	"time"

	"longtake/internal/engine"
	"longtake/internal/sched"
	"longtake/internal/section"
	"longtake/internal/visibility"
)

const debounce = 100 * time.Millisecond

func newCoordinator(t *testing.T) (*visibility.Coordinator, *sched.Manual) {
	t.Helper()
	manual := sched.NewManual()
	coord := visibility.New(section.Embedded(), manual, debounce, nil)
	t.Cleanup(coord.Close)
	return coord, manual
}

func TestOverlayVisibleOnHeroInitially(t *testing.T) {
	coord, _ := newCoordinator(t)
	state := coord.Current()
	if !state.UIVisible {
		t.Fatal("overlay hidden on hero")
	}
	if state.Section != section.Hero {
		t.Fatalf("section = %s, want hero", state.Section)
	}
}

func TestOverlayHidesOnExitAndShowsAfterDebounce(t *testing.T) {
	coord, manual := newCoordinator(t)

	coord.Observe(engine.Event{Kind: engine.KindExitStarted, From: section.Hero, To: section.AboutStart})
	if coord.Current().UIVisible {
		t.Fatal("overlay still visible after exit started")
	}

	coord.Observe(engine.Event{Kind: engine.KindCommitted, From: section.Hero, To: section.AboutStart})
	if coord.Current().UIVisible {
		t.Fatal("overlay shown before debounce elapsed")
	}

	manual.Advance(debounce)
	state := coord.Current()
	if !state.UIVisible {
		t.Fatal("overlay hidden after debounce")
	}
	if state.Section != section.AboutStart {
		t.Fatalf("section = %s, want about-start", state.Section)
	}
}

func TestOverlayStaysHiddenOnSectionsWithoutUI(t *testing.T) {
	coord, manual := newCoordinator(t)

	coord.Observe(engine.Event{Kind: engine.KindExitStarted, From: section.About, To: section.TeamOne})
	coord.Observe(engine.Event{Kind: engine.KindCommitted, From: section.About, To: section.TeamOne})
	manual.Advance(time.Second)

	if coord.Current().UIVisible {
		t.Fatal("overlay shown on a section without UI")
	}
	if got := manual.PendingTimers(); got != 0 {
		t.Fatalf("pending timers = %d, want 0", got)
	}
}

func TestNewExitCancelsPendingShow(t *testing.T) {
	coord, manual := newCoordinator(t)

	coord.Observe(engine.Event{Kind: engine.KindExitStarted, From: section.Hero, To: section.AboutStart})
	coord.Observe(engine.Event{Kind: engine.KindCommitted, From: section.Hero, To: section.AboutStart})

	// The next exit lands before the debounce elapsed; the stale show must
	// not fire later.
	coord.Observe(engine.Event{Kind: engine.KindExitStarted, From: section.AboutStart, To: section.About})
	manual.Advance(time.Second)

	if coord.Current().UIVisible {
		t.Fatal("stale show fired after a new exit")
	}
}

func TestLeavingContactFlag(t *testing.T) {
	coord, manual := newCoordinator(t)

	coord.Observe(engine.Event{Kind: engine.KindExitStarted, From: section.Contact, To: section.Hero})
	if !coord.Current().LeavingContact {
		t.Fatal("leaving-contact not set on contact exit")
	}

	coord.Observe(engine.Event{Kind: engine.KindCommitted, From: section.Contact, To: section.Hero})
	if coord.Current().LeavingContact {
		t.Fatal("leaving-contact still set after commit")
	}
	manual.Advance(debounce)
	if !coord.Current().UIVisible {
		t.Fatal("overlay hidden after returning to hero")
	}
}

func TestNotifyDeliversStateChanges(t *testing.T) {
	coord, manual := newCoordinator(t)

	var states []visibility.State
	coord.Notify(func(state visibility.State) { states = append(states, state) })

	coord.Observe(engine.Event{Kind: engine.KindExitStarted, From: section.Hero, To: section.Contact})
	coord.Observe(engine.Event{Kind: engine.KindCommitted, From: section.Hero, To: section.Contact})
	manual.Advance(debounce)

	if len(states) != 3 {
		t.Fatalf("notifications = %d, want 3", len(states))
	}
	if states[0].UIVisible {
		t.Fatal("first notification should hide")
	}
	if !states[2].UIVisible || states[2].Section != section.Contact {
		t.Fatalf("final state = %+v", states[2])
	}
}
