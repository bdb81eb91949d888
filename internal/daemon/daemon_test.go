package daemon_test

import (
	"context"
	"testing"
	"time"

	"longtake/internal/daemon"
	"longtake/internal/engine"
	"longtake/internal/inputgate"
	"longtake/internal/journal"
	"longtake/internal/logging"
	"longtake/internal/scene/scripted"
	"longtake/internal/sched"
	"longtake/internal/section"
	"longtake/internal/testsupport"
	"longtake/internal/visibility"
)

func newDaemon(t *testing.T) (*daemon.Daemon, *journal.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	graph := section.Embedded()

	lib := scripted.NewLibrary()
	for _, s := range graph.Sections() {
		if graph.Info(s).Looping {
			lib.AddScene(string(s), scripted.NewLooping(10*time.Second))
		} else {
			lib.AddScene(string(s), scripted.NewPlayer(10*time.Second))
		}
	}
	for _, edge := range graph.Edges() {
		if lib.BridgePlayer(string(edge.Clip)) == nil {
			lib.AddBridge(string(edge.Clip), scripted.NewPlayer(2*time.Second))
		}
	}

	logger := logging.NewNop()
	ctrl := engine.New(graph, lib, sched.NewManual(), cfg.Timing, logger, engine.WithRecorder(journal.NewRecorder(store, logger)))
	vis := visibility.New(graph, sched.NewManual(), cfg.Timing.ShowUIDebounce(), logger)
	ctrl.Notify(vis.Observe)
	gate := inputgate.New(ctrl, graph, inputgate.Options{
		WheelThreshold: cfg.Input.WheelThreshold,
		TouchThreshold: cfg.Input.TouchThreshold,
		Cooldown:       cfg.Input.Cooldown(),
	}, logger)

	d, err := daemon.New(cfg, store, logger, ctrl, gate, vis, lib)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, store
}

func TestStartStopLifecycle(t *testing.T) {
	d, _ := newDaemon(t)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("second Start should fail while running")
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("status reports not running")
	}
	if status.Engine.Current != section.Hero {
		t.Fatalf("engine current = %s, want hero", status.Engine.Current)
	}
	if !status.Visibility.UIVisible {
		t.Fatal("overlay should be visible on hero")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("status reports running after stop")
	}
}

func TestNavigateValidation(t *testing.T) {
	d, _ := newDaemon(t)

	if _, err := d.Navigate("sideways", ""); err == nil {
		t.Fatal("unknown intent accepted")
	}
	if _, err := d.Navigate("direct", "nowhere"); err == nil {
		t.Fatal("unknown section accepted")
	}

	snap, err := d.Navigate("forward", "")
	if err != nil {
		t.Fatalf("Navigate forward: %v", err)
	}
	if !snap.WaitingForLoop {
		t.Fatalf("snapshot = %+v, want waiting-for-loop", snap)
	}
}

func TestWheelGoesThroughGateway(t *testing.T) {
	d, _ := newDaemon(t)

	verdict, _ := d.Wheel(5)
	if verdict != inputgate.BelowThreshold {
		t.Fatalf("tiny wheel verdict = %s", verdict)
	}
	verdict, snap := d.Wheel(50)
	if verdict != inputgate.Accepted {
		t.Fatalf("wheel verdict = %s", verdict)
	}
	if !snap.WaitingForLoop {
		t.Fatalf("snapshot = %+v, want waiting-for-loop", snap)
	}
}

func TestMutePreferenceRoundTrip(t *testing.T) {
	d, _ := newDaemon(t)
	ctx := context.Background()

	if err := d.SetMuted(ctx, true); err != nil {
		t.Fatalf("SetMuted: %v", err)
	}
	muted, err := d.Muted(ctx)
	if err != nil {
		t.Fatalf("Muted: %v", err)
	}
	if !muted {
		t.Fatal("mute preference lost")
	}
	if !d.Status(ctx).Muted {
		t.Fatal("status does not reflect mute preference")
	}
}
