package loopwatch_test

import (
	"testing"
	"time"

	"longtake/internal/logging"
	"longtake/internal/loopwatch"
	"longtake/internal/scene/scripted"
)

func TestWrapDetectionFiresOnce(t *testing.T) {
	player := scripted.NewLooping(10 * time.Second)
	player.SetPosition(9 * time.Second)
	if err := player.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}

	completions := 0
	watch := loopwatch.Start(player, loopwatch.Options{SpeedMultiplier: 5}, func() { completions++ }, logging.NewNop())

	if player.Rate() != 5 {
		t.Fatalf("rate during watch = %g, want 5", player.Rate())
	}

	// 400ms of wall time at 5x moves the playhead 2s: past the seam and back
	// to the start, a backward jump well over the wrap threshold.
	player.Advance(200 * time.Millisecond)
	player.Advance(200 * time.Millisecond)

	if completions != 1 {
		t.Fatalf("completions = %d, want 1", completions)
	}
	if player.Rate() != 1 {
		t.Fatalf("rate after completion = %g, want 1", player.Rate())
	}
	if !watch.Finished() {
		t.Fatal("watch should be finished")
	}

	// Duplicate ticks after completion are no-ops.
	player.Advance(200 * time.Millisecond)
	player.FireTimeUpdate()
	if completions != 1 {
		t.Fatalf("completions after extra ticks = %d, want 1", completions)
	}
}

func TestEarlyCompleteTolerance(t *testing.T) {
	player := scripted.NewLooping(10 * time.Second)
	player.SetPosition(9900 * time.Millisecond)

	completions := 0
	loopwatch.Start(player, loopwatch.Options{
		SpeedMultiplier:        5,
		EarlyCompleteTolerance: 120 * time.Millisecond,
	}, func() { completions++ }, logging.NewNop())

	// Position 9.90s of 10s is inside the 0.12s tolerance; completion fires
	// without any backward jump.
	if completions != 1 {
		t.Fatalf("completions = %d, want 1", completions)
	}
	if player.Rate() != 1 {
		t.Fatalf("rate = %g, want 1", player.Rate())
	}
}

func TestEarlyCompleteOnTick(t *testing.T) {
	player := scripted.NewLooping(10 * time.Second)
	player.SetPosition(9 * time.Second)
	if err := player.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}

	completions := 0
	loopwatch.Start(player, loopwatch.Options{
		SpeedMultiplier:        1,
		EarlyCompleteTolerance: 500 * time.Millisecond,
	}, func() { completions++ }, logging.NewNop())

	if completions != 0 {
		t.Fatal("should not complete at 9.0s with 0.5s tolerance")
	}
	player.Advance(600 * time.Millisecond)
	if completions != 1 {
		t.Fatalf("completions = %d, want 1", completions)
	}
}

func TestCancelRestoresRate(t *testing.T) {
	player := scripted.NewLooping(10 * time.Second)
	completions := 0
	watch := loopwatch.Start(player, loopwatch.Options{}, func() { completions++ }, logging.NewNop())

	if player.Rate() != loopwatch.DefaultSpeedMultiplier {
		t.Fatalf("rate = %g, want default multiplier", player.Rate())
	}
	watch.Cancel()
	if player.Rate() != 1 {
		t.Fatalf("rate after cancel = %g, want 1", player.Rate())
	}

	// No completion after cancel, even across a wrap.
	player.SetPosition(9 * time.Second)
	if err := player.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	player.Advance(2 * time.Second)
	if completions != 0 {
		t.Fatalf("completions after cancel = %d, want 0", completions)
	}

	// Cancel after cancel, and cancel after completion, are no-ops.
	watch.Cancel()
}

func TestNilPlayerYieldsInertWatch(t *testing.T) {
	fired := false
	watch := loopwatch.Start(nil, loopwatch.Options{}, func() { fired = true }, logging.NewNop())
	if !watch.Finished() {
		t.Fatal("inert watch should report finished")
	}
	watch.Cancel()
	if fired {
		t.Fatal("inert watch must never fire")
	}
}

func TestSmallJitterDoesNotTriggerWrap(t *testing.T) {
	player := scripted.NewLooping(10 * time.Second)
	completions := 0
	loopwatch.Start(player, loopwatch.Options{SpeedMultiplier: 1}, func() { completions++ }, logging.NewNop())

	// Backward jitter under the 1s threshold must not count as a wrap.
	player.SetPosition(5 * time.Second)
	player.FireTimeUpdate()
	player.SetPosition(4500 * time.Millisecond)
	player.FireTimeUpdate()
	if completions != 0 {
		t.Fatalf("jitter triggered completion")
	}

	player.SetPosition(100 * time.Millisecond)
	player.FireTimeUpdate()
	if completions != 1 {
		t.Fatalf("real wrap not detected, completions = %d", completions)
	}
}
