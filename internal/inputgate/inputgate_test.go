package inputgate_test

import (
	"testing"
	"time"

	"longtake/internal/engine"
	"longtake/internal/inputgate"
	"longtake/internal/section"
)

type fakeNavigator struct {
	busy     bool
	current  section.Section
	forward  int
	back     int
	err      error
	triggers []string
}

func (f *fakeNavigator) Busy() bool               { return f.busy }
func (f *fakeNavigator) Current() section.Section { return f.current }

func (f *fakeNavigator) RequestForward(trigger string) error {
	f.triggers = append(f.triggers, trigger)
	if f.err != nil {
		return f.err
	}
	f.forward++
	return nil
}

func (f *fakeNavigator) RequestBack(trigger string) error {
	f.triggers = append(f.triggers, trigger)
	if f.err != nil {
		return f.err
	}
	f.back++
	return nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newGateway(nav *fakeNavigator, clock *fakeClock) *inputgate.Gateway {
	return inputgate.New(nav, section.Embedded(), inputgate.Options{
		WheelThreshold: 30,
		TouchThreshold: 60,
		Cooldown:       1500 * time.Millisecond,
		Now:            clock.Now,
	}, nil)
}

func TestWheelThresholdAndDirection(t *testing.T) {
	nav := &fakeNavigator{current: section.Hero}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gw := newGateway(nav, clock)

	if got := gw.Wheel(10); got != inputgate.BelowThreshold {
		t.Fatalf("small delta verdict = %s", got)
	}
	if got := gw.Wheel(45); got != inputgate.Accepted {
		t.Fatalf("forward wheel verdict = %s", got)
	}
	clock.advance(2 * time.Second)
	nav.current = section.About
	if got := gw.Wheel(-45); got != inputgate.Accepted {
		t.Fatalf("back wheel verdict = %s", got)
	}
	if nav.forward != 1 || nav.back != 1 {
		t.Fatalf("forward = %d back = %d, want 1 and 1", nav.forward, nav.back)
	}
}

func TestWheelDisabledSections(t *testing.T) {
	nav := &fakeNavigator{current: section.Contact}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gw := newGateway(nav, clock)

	if got := gw.Wheel(100); got != inputgate.WheelDisabled {
		t.Fatalf("wheel on contact verdict = %s", got)
	}
	if nav.forward+nav.back != 0 {
		t.Fatal("request issued despite disabled wheel")
	}

	// Touch ignores the wheel policy.
	if got := gw.Touch(-80); got != inputgate.Accepted {
		t.Fatalf("touch on contact verdict = %s", got)
	}
}

func TestCooldownSpacesGestures(t *testing.T) {
	nav := &fakeNavigator{current: section.About}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gw := newGateway(nav, clock)

	if got := gw.Wheel(50); got != inputgate.Accepted {
		t.Fatalf("first gesture verdict = %s", got)
	}
	if got := gw.Wheel(50); got != inputgate.CoolingDown {
		t.Fatalf("immediate repeat verdict = %s", got)
	}
	clock.advance(time.Second)
	if got := gw.Wheel(50); got != inputgate.CoolingDown {
		t.Fatalf("repeat inside cooldown verdict = %s", got)
	}
	clock.advance(time.Second)
	if got := gw.Wheel(50); got != inputgate.Accepted {
		t.Fatalf("gesture after cooldown verdict = %s", got)
	}
	if nav.forward != 2 {
		t.Fatalf("forward = %d, want 2", nav.forward)
	}
}

func TestBusySwallowsGestures(t *testing.T) {
	nav := &fakeNavigator{current: section.About, busy: true}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gw := newGateway(nav, clock)

	if got := gw.Wheel(50); got != inputgate.Busy {
		t.Fatalf("busy verdict = %s", got)
	}
	if got := gw.Touch(100); got != inputgate.Busy {
		t.Fatalf("busy touch verdict = %s", got)
	}
	if len(nav.triggers) != 0 {
		t.Fatal("gestures reached the navigator while busy")
	}

	// Swallowed gestures do not consume the cooldown.
	nav.busy = false
	if got := gw.Wheel(50); got != inputgate.Accepted {
		t.Fatalf("gesture after busy verdict = %s", got)
	}
}

func TestNoEdgeVerdict(t *testing.T) {
	nav := &fakeNavigator{current: section.Hero, err: engine.ErrNoEdge}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gw := newGateway(nav, clock)

	if got := gw.Wheel(-50); got != inputgate.NoEdge {
		t.Fatalf("verdict = %s, want no-edge", got)
	}

	// A rejected gesture leaves the cooldown untouched.
	nav.err = nil
	if got := gw.Wheel(50); got != inputgate.Accepted {
		t.Fatalf("verdict after rejection = %s", got)
	}
}

func TestGestureTriggerNames(t *testing.T) {
	nav := &fakeNavigator{current: section.About}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	gw := newGateway(nav, clock)

	gw.Wheel(50)
	clock.advance(2 * time.Second)
	gw.Touch(100)

	if len(nav.triggers) != 2 || nav.triggers[0] != "wheel" || nav.triggers[1] != "touch" {
		t.Fatalf("triggers = %v", nav.triggers)
	}
}
