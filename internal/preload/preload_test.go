package preload_test

import (
	"context"
	"testing"
	"time"

	"longtake/internal/config"
	"longtake/internal/preload"
	"longtake/internal/scene/scripted"
	"longtake/internal/section"
)

func warmConfig(timeoutMS int) config.Preload {
	return config.Preload{Enabled: true, Concurrency: 3, TimeoutMS: timeoutMS}
}

func fullLibrary() *scripted.Library {
	graph := section.Embedded()
	lib := scripted.NewLibrary()
	for _, s := range graph.Sections() {
		lib.AddScene(string(s), scripted.NewPlayer(10*time.Second))
	}
	for _, edge := range graph.Edges() {
		if lib.BridgePlayer(string(edge.Clip)) == nil {
			lib.AddBridge(string(edge.Clip), scripted.NewPlayer(2*time.Second))
		}
	}
	return lib
}

func TestWarmReadyLibrary(t *testing.T) {
	graph := section.Embedded()
	lib := fullLibrary()

	summary := preload.Warm(context.Background(), graph, lib, warmConfig(1000), nil)
	if summary.Missing != 0 || summary.TimedOut != 0 {
		t.Fatalf("summary = %+v, want no misses", summary)
	}
	clips := make(map[section.Clip]bool)
	for _, edge := range graph.Edges() {
		clips[edge.Clip] = true
	}
	want := len(graph.Sections()) + len(clips)
	if summary.Warmed != want {
		t.Fatalf("warmed = %d, want %d", summary.Warmed, want)
	}
}

func TestWarmCountsMissingHandles(t *testing.T) {
	graph := section.Embedded()
	lib := scripted.NewLibrary()
	lib.AddScene(string(section.Hero), scripted.NewPlayer(10*time.Second))

	summary := preload.Warm(context.Background(), graph, lib, warmConfig(50), nil)
	if summary.Warmed != 1 {
		t.Fatalf("warmed = %d, want 1", summary.Warmed)
	}
	if summary.Missing == 0 {
		t.Fatal("missing handles not counted")
	}
}

func TestWarmWaitsForCanPlay(t *testing.T) {
	graph := section.Embedded()
	lib := fullLibrary()
	cold := lib.ScenePlayer(string(section.Hero))
	cold.SetReady(0)

	go func() {
		time.Sleep(20 * time.Millisecond)
		cold.FireCanPlay()
	}()

	summary := preload.Warm(context.Background(), graph, lib, warmConfig(2000), nil)
	if summary.TimedOut != 0 || summary.Missing != 0 {
		t.Fatalf("summary = %+v, want all warmed", summary)
	}
}

func TestWarmTimesOutOnStalledAsset(t *testing.T) {
	graph := section.Embedded()
	lib := fullLibrary()
	lib.ScenePlayer(string(section.Hero)).SetReady(0)

	summary := preload.Warm(context.Background(), graph, lib, warmConfig(20), nil)
	if summary.TimedOut != 1 {
		t.Fatalf("timed out = %d, want 1", summary.TimedOut)
	}
}

func TestWarmDisabled(t *testing.T) {
	summary := preload.Warm(context.Background(), section.Embedded(), fullLibrary(), config.Preload{}, nil)
	if summary != (preload.Summary{}) {
		t.Fatalf("summary = %+v, want zero", summary)
	}
}
