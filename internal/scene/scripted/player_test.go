package scripted_test

import (
	"errors"
	"testing"
	"time"

	"longtake/internal/scene"
	"longtake/internal/scene/scripted"
)

func TestAdvanceAppliesRate(t *testing.T) {
	player := scripted.NewPlayer(10 * time.Second)
	if err := player.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}

	player.SetRate(2)
	player.Advance(3 * time.Second)

	if got := player.Position(); got != 6*time.Second {
		t.Fatalf("position = %s, want 6s", got)
	}
}

func TestLoopingWrapReportsPostWrapPosition(t *testing.T) {
	player := scripted.NewLooping(4 * time.Second)
	if err := player.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}

	var positions []time.Duration
	player.Subscribe(scene.EventTimeUpdate, func(ev scene.Event) {
		positions = append(positions, ev.Position)
	})

	player.Advance(3 * time.Second)
	player.Advance(2 * time.Second)

	if len(positions) != 2 {
		t.Fatalf("got %d time updates, want 2", len(positions))
	}
	if positions[0] != 3*time.Second {
		t.Fatalf("first update = %s, want 3s", positions[0])
	}
	if positions[1] != 1*time.Second {
		t.Fatalf("post-wrap update = %s, want 1s", positions[1])
	}
	if !player.Playing() {
		t.Fatal("looping player should keep playing across the wrap")
	}
}

func TestNonLoopingEndsAtDuration(t *testing.T) {
	player := scripted.NewPlayer(2 * time.Second)
	if err := player.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}

	ended := 0
	player.Subscribe(scene.EventEnded, func(scene.Event) { ended++ })

	player.Advance(5 * time.Second)

	if ended != 1 {
		t.Fatalf("ended fired %d times, want 1", ended)
	}
	if player.Playing() {
		t.Fatal("player should stop at the end")
	}
	if got := player.Position(); got != 2*time.Second {
		t.Fatalf("position = %s, want clamp at 2s", got)
	}
}

func TestSeekEmitsSeekedSynchronously(t *testing.T) {
	player := scripted.NewPlayer(5 * time.Second)

	var seeked []time.Duration
	player.Subscribe(scene.EventSeeked, func(ev scene.Event) {
		seeked = append(seeked, ev.Position)
	})

	player.Seek(7 * time.Second)
	player.Seek(-time.Second)

	if len(seeked) != 2 {
		t.Fatalf("got %d seeked events, want 2", len(seeked))
	}
	if seeked[0] != 5*time.Second {
		t.Fatalf("seek past end = %s, want clamp at 5s", seeked[0])
	}
	if seeked[1] != 0 {
		t.Fatalf("negative seek = %s, want clamp at 0", seeked[1])
	}
}

func TestPlayErrorLeavesPlayerPaused(t *testing.T) {
	player := scripted.NewPlayer(2 * time.Second)
	rejection := errors.New("autoplay rejected")
	player.SetPlayError(rejection)

	if err := player.Play(); !errors.Is(err, rejection) {
		t.Fatalf("play error = %v, want %v", err, rejection)
	}
	if player.Playing() {
		t.Fatal("failed play must not start playback")
	}
	if player.PlayCalls() != 1 {
		t.Fatalf("play calls = %d, want 1", player.PlayCalls())
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	player := scripted.NewPlayer(5 * time.Second)
	if err := player.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}

	updates := 0
	sub := player.Subscribe(scene.EventTimeUpdate, func(scene.Event) { updates++ })

	player.Advance(time.Second)
	sub.Cancel()
	player.Advance(time.Second)

	if updates != 1 {
		t.Fatalf("got %d updates after cancel, want 1", updates)
	}
}

func TestLibraryTickAdvancesOnlyPlayingPlayers(t *testing.T) {
	lib := scripted.NewLibrary()
	hero := lib.AddScene("hero", scripted.NewLooping(10*time.Second))
	idle := lib.AddScene("about", scripted.NewLooping(10*time.Second))
	bridge := lib.AddBridge("hero-about", scripted.NewPlayer(2*time.Second))

	if err := hero.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := bridge.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}

	lib.Tick(time.Second)

	if got := hero.Position(); got != time.Second {
		t.Fatalf("hero position = %s, want 1s", got)
	}
	if got := bridge.Position(); got != time.Second {
		t.Fatalf("bridge position = %s, want 1s", got)
	}
	if got := idle.Position(); got != 0 {
		t.Fatalf("paused scene moved to %s", got)
	}
}

func TestLibraryResolvesNilForUnknownAssets(t *testing.T) {
	lib := scripted.NewLibrary()
	if lib.Scene("hero") != nil {
		t.Fatal("unknown scene should resolve to nil")
	}
	if lib.Bridge("hero-about") != nil {
		t.Fatal("unknown bridge should resolve to nil")
	}
}
