package engine_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"longtake/internal/config"
	"longtake/internal/engine"
	"longtake/internal/scene/scripted"
	"longtake/internal/sched"
	"longtake/internal/section"
)

const (
	sceneDuration  = 10 * time.Second
	bridgeDuration = 2 * time.Second
)

type harness struct {
	t     *testing.T
	ctrl  *engine.Controller
	sched *sched.Manual
	lib   *scripted.Library

	mu      sync.Mutex
	events  []engine.Event
	records []engine.TransitionRecord
}

func (h *harness) RecordTransition(rec engine.TransitionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
}

func (h *harness) eventKinds() []engine.EventKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	kinds := make([]engine.EventKind, len(h.events))
	for i, ev := range h.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func (h *harness) lastEvent() engine.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) == 0 {
		h.t.Fatal("no events emitted")
	}
	return h.events[len(h.events)-1]
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	graph := section.Embedded()
	lib := scripted.NewLibrary()
	for _, s := range graph.Sections() {
		if graph.Info(s).Looping {
			lib.AddScene(string(s), scripted.NewLooping(sceneDuration))
		} else {
			lib.AddScene(string(s), scripted.NewPlayer(sceneDuration))
		}
	}
	for _, edge := range graph.Edges() {
		if lib.BridgePlayer(string(edge.Clip)) == nil {
			lib.AddBridge(string(edge.Clip), scripted.NewPlayer(bridgeDuration))
		}
	}

	h := &harness{t: t, sched: sched.NewManual(), lib: lib}
	h.ctrl = engine.New(graph, lib, h.sched, config.Default().Timing, nil, engine.WithRecorder(h))
	h.ctrl.Notify(func(ev engine.Event) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.events = append(h.events, ev)
	})
	t.Cleanup(h.ctrl.Close)
	return h
}

// pumpLoop drives the current section's looping scene through its seam so a
// pending loop wait completes and the bridge is scheduled.
func (h *harness) pumpLoop(from section.Section) {
	h.t.Helper()
	player := h.lib.ScenePlayer(string(from))
	if player == nil {
		h.t.Fatalf("no scene player for %s", from)
	}
	if !player.Playing() {
		if err := player.Play(); err != nil {
			h.t.Fatalf("play %s scene: %v", from, err)
		}
	}
	// Small steps keep the seam crossing visible as one large backward jump
	// between consecutive updates, wherever the playhead started.
	for i := 0; i < 30; i++ {
		player.Advance(100 * time.Millisecond)
	}
	h.sched.RunFrame()
}

// pumpBridge runs the settle delay, plays the bridge to its end, and pumps
// the two commit frames.
func (h *harness) pumpBridge(clip section.Clip) {
	h.t.Helper()
	h.sched.Advance(config.Default().Timing.SettleDelay())
	bridge := h.lib.BridgePlayer(string(clip))
	if bridge == nil {
		h.t.Fatalf("no bridge player for %s", clip)
	}
	bridge.Advance(bridgeDuration + time.Millisecond)
	h.sched.RunFrames(2)
}

// navigate performs a full transition and fails the test if it does not
// commit at target.
func (h *harness) navigate(intent section.Intent, target section.Section, clip section.Clip) {
	h.t.Helper()
	from := h.ctrl.Current()
	var err error
	switch intent.Kind {
	case section.IntentForward:
		err = h.ctrl.RequestForward("test")
	case section.IntentBack:
		err = h.ctrl.RequestBack("test")
	default:
		err = h.ctrl.RequestDirect(intent.Target, "test")
	}
	if err != nil {
		h.t.Fatalf("request %s from %s: %v", intent, from, err)
	}
	if h.ctrl.Snapshot().WaitingForLoop {
		h.pumpLoop(from)
	}
	h.pumpBridge(clip)
	if got := h.ctrl.Current(); got != target {
		h.t.Fatalf("current = %s, want %s", got, target)
	}
}

func TestHeroForwardFullTransition(t *testing.T) {
	h := newHarness(t)
	hero := h.lib.ScenePlayer(string(section.Hero))
	hero.Play()

	if err := h.ctrl.RequestForward("wheel"); err != nil {
		t.Fatalf("request forward: %v", err)
	}

	snap := h.ctrl.Snapshot()
	if !snap.WaitingForLoop {
		t.Fatalf("state = %s, want waiting-for-loop", snap.State)
	}
	if snap.Transitioning {
		t.Fatal("transitioning must stay false during loop wait")
	}
	if !h.ctrl.Busy() {
		t.Fatal("controller must be busy during loop wait")
	}
	if got := hero.Rate(); got != 5.0 {
		t.Fatalf("loop wait rate = %v, want 5.0", got)
	}

	// Cross the seam: the backward position jump completes the wait and the
	// bridge starts one frame later.
	hero.Advance(time.Second)
	hero.Advance(1200 * time.Millisecond)
	if got := hero.Rate(); got != 1.0 {
		t.Fatalf("rate after loop completion = %v, want 1.0", got)
	}
	if got := h.ctrl.Current(); got != section.Hero {
		t.Fatalf("current moved before frame tick: %s", got)
	}
	h.sched.RunFrame()

	if !h.ctrl.Transitioning() {
		t.Fatal("bridge phase must report transitioning")
	}
	h.sched.Advance(config.Default().Timing.SettleDelay())

	bridge := h.lib.BridgePlayer("hero-to-about-start")
	if !bridge.Playing() {
		t.Fatal("bridge clip not playing after settle delay")
	}
	bridge.Advance(bridgeDuration + time.Millisecond)

	// Commit is double-deferred: still on hero after the first frame.
	if got := h.ctrl.Current(); got != section.Hero {
		t.Fatalf("current = %s before commit frames", got)
	}
	h.sched.RunFrame()
	if got := h.ctrl.Current(); got != section.Hero {
		t.Fatalf("current = %s after one frame, want hero", got)
	}
	h.sched.RunFrame()

	if got := h.ctrl.Current(); got != section.AboutStart {
		t.Fatalf("current = %s, want about-start", got)
	}
	if h.ctrl.Busy() {
		t.Fatal("controller still busy after commit")
	}
	target := h.lib.ScenePlayer(string(section.AboutStart))
	if !target.Playing() {
		t.Fatal("target scene not playing after commit")
	}

	want := []engine.EventKind{engine.KindExitStarted, engine.KindLoopWaitStarted, engine.KindBridgeStarted, engine.KindCommitted}
	got := h.eventKinds()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.records) != 1 {
		t.Fatalf("records = %d, want 1", len(h.records))
	}
	rec := h.records[0]
	if rec.From != section.Hero || rec.To != section.AboutStart || rec.Fallback {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.LoopWait <= 0 {
		t.Fatal("record missing loop wait duration")
	}
}

func TestRequestsDroppedDuringBridge(t *testing.T) {
	h := newHarness(t)
	h.navigate(section.Forward(), section.AboutStart, "hero-to-about-start")

	if err := h.ctrl.RequestForward("test"); err != nil {
		t.Fatalf("request forward: %v", err)
	}
	h.sched.Advance(config.Default().Timing.SettleDelay())
	if !h.ctrl.Transitioning() {
		t.Fatal("expected bridge in flight")
	}

	if err := h.ctrl.RequestBack("test"); !errors.Is(err, engine.ErrBusy) {
		t.Fatalf("request during bridge: err = %v, want ErrBusy", err)
	}
	snap := h.ctrl.Snapshot()
	if snap.Target != section.About {
		t.Fatalf("target changed to %s after dropped request", snap.Target)
	}

	bridge := h.lib.BridgePlayer("about-start-to-about")
	bridge.Advance(bridgeDuration + time.Millisecond)
	h.sched.RunFrames(2)
	if got := h.ctrl.Current(); got != section.About {
		t.Fatalf("current = %s, want about", got)
	}
}

func TestContraryRequestReplacesLoopWait(t *testing.T) {
	h := newHarness(t)
	hero := h.lib.ScenePlayer(string(section.Hero))
	hero.Play()

	if err := h.ctrl.RequestForward("test"); err != nil {
		t.Fatalf("request forward: %v", err)
	}
	if err := h.ctrl.RequestForward("test"); !errors.Is(err, engine.ErrBusy) {
		t.Fatalf("repeat request: err = %v, want ErrBusy", err)
	}
	if err := h.ctrl.RequestDirect(section.Cases, "test"); err != nil {
		t.Fatalf("contrary request: %v", err)
	}

	snap := h.ctrl.Snapshot()
	if !snap.WaitingForLoop || snap.Target != section.Cases {
		t.Fatalf("snapshot after replacement: %+v", snap)
	}
	if got := hero.Rate(); got != 5.0 {
		t.Fatalf("rate after replacement = %v, want 5.0", got)
	}

	h.pumpLoop(section.Hero)
	h.pumpBridge("hero-to-cases")
	if got := h.ctrl.Current(); got != section.Cases {
		t.Fatalf("current = %s, want cases", got)
	}

	// Exactly one commit despite two accepted requests.
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.records) != 1 {
		t.Fatalf("records = %d, want 1", len(h.records))
	}
	if h.records[0].To != section.Cases {
		t.Fatalf("committed to %s, want cases", h.records[0].To)
	}
}

func TestEarlyCompleteTolerance(t *testing.T) {
	h := newHarness(t)
	hero := h.lib.ScenePlayer(string(section.Hero))
	hero.Play()
	hero.SetPosition(sceneDuration - 100*time.Millisecond)

	if err := h.ctrl.RequestForward("test"); err != nil {
		t.Fatalf("request forward: %v", err)
	}
	// Inside the tolerance window the wait completes without any playback:
	// the bridge is already pending on the next frame.
	if got := hero.Rate(); got != 1.0 {
		t.Fatalf("rate = %v, want 1.0 after synchronous completion", got)
	}
	h.sched.RunFrame()
	if !h.ctrl.Transitioning() {
		t.Fatal("bridge not scheduled after early completion")
	}

	h.pumpBridge("hero-to-about-start")
	if got := h.ctrl.Current(); got != section.AboutStart {
		t.Fatalf("current = %s, want about-start", got)
	}
}

func TestBackEdgeMirrorsForward(t *testing.T) {
	h := newHarness(t)
	h.navigate(section.Forward(), section.AboutStart, "hero-to-about-start")
	h.navigate(section.Forward(), section.About, "about-start-to-about")
	h.navigate(section.Back(), section.AboutStart, "about-to-about-start")
	h.navigate(section.Back(), section.Hero, "about-start-to-hero")
	if got := h.ctrl.Current(); got != section.Hero {
		t.Fatalf("current = %s, want hero", got)
	}
}

func TestContactExitFreezesSceneAtSeam(t *testing.T) {
	h := newHarness(t)
	h.navigate(section.DirectTo(section.Contact), section.Contact, "hero-to-contact")

	contact := h.lib.ScenePlayer(string(section.Contact))
	if !contact.Playing() {
		t.Fatal("contact loop not playing after entry commit")
	}
	if err := h.ctrl.RequestBack("test"); err != nil {
		t.Fatalf("request back: %v", err)
	}
	h.pumpLoop(section.Contact)

	// The loop crossed its seam during the exit: the media must be held on
	// its last frame, not left wrapping back to the start.
	if contact.Playing() {
		t.Fatal("contact loop still playing after its seam")
	}
	want := sceneDuration - 10*time.Millisecond
	if got := contact.LastSeek(); got != want {
		t.Fatalf("freeze seek = %v, want %v", got, want)
	}
	if got := contact.Position(); got != want {
		t.Fatalf("frozen position = %v, want %v", got, want)
	}
	if got := contact.Rate(); got != 1.0 {
		t.Fatalf("rate after freeze = %v, want 1.0", got)
	}

	h.pumpBridge("contact-to-hero")
	if got := h.ctrl.Current(); got != section.Hero {
		t.Fatalf("current = %s, want hero", got)
	}
	if contact.Playing() {
		t.Fatal("contact loop restarted during the exit bridge")
	}
}

func TestContactExitFreezesInsideNearEndWindow(t *testing.T) {
	h := newHarness(t)
	h.navigate(section.DirectTo(section.Contact), section.Contact, "hero-to-contact")

	contact := h.lib.ScenePlayer(string(section.Contact))
	contact.SetPosition(sceneDuration - 600*time.Millisecond)
	if err := h.ctrl.RequestBack("test"); err != nil {
		t.Fatalf("request back: %v", err)
	}

	// One accelerated tick lands inside the near-end window without ever
	// wrapping; the freeze must fire before the playhead reaches the seam.
	contact.Advance(100 * time.Millisecond)
	if contact.Playing() {
		t.Fatal("contact loop not frozen inside the near-end window")
	}
	want := sceneDuration - 10*time.Millisecond
	if got := contact.LastSeek(); got != want {
		t.Fatalf("freeze seek = %v, want %v", got, want)
	}
	if got := contact.Rate(); got != 1.0 {
		t.Fatalf("rate after freeze = %v, want 1.0", got)
	}

	h.sched.RunFrame()
	h.pumpBridge("contact-to-hero")
	if got := h.ctrl.Current(); got != section.Hero {
		t.Fatalf("current = %s, want hero", got)
	}
}

func TestContraryRequestAfterContactFreeze(t *testing.T) {
	h := newHarness(t)
	h.navigate(section.DirectTo(section.Contact), section.Contact, "hero-to-contact")

	contact := h.lib.ScenePlayer(string(section.Contact))
	contact.SetPosition(sceneDuration - 600*time.Millisecond)
	if err := h.ctrl.RequestBack("test"); err != nil {
		t.Fatalf("request back: %v", err)
	}
	contact.Advance(100 * time.Millisecond)
	if contact.Playing() {
		t.Fatal("exit did not freeze the loop")
	}

	// Swapping the destination while the frozen exit is still pending must
	// carry the freeze over to the replacement attempt.
	if err := h.ctrl.RequestDirect(section.Cases, "test"); err != nil {
		t.Fatalf("contrary request: %v", err)
	}
	h.sched.RunFrame()
	h.pumpBridge("contact-to-cases")
	if got := h.ctrl.Current(); got != section.Cases {
		t.Fatalf("current = %s, want cases", got)
	}
}

func TestContactExitReturnsToOrigin(t *testing.T) {
	h := newHarness(t)

	// Entering from hero: back leads home.
	h.navigate(section.DirectTo(section.Contact), section.Contact, "hero-to-contact")
	if got := h.ctrl.Previous(); got != section.Hero {
		t.Fatalf("previous = %s, want hero", got)
	}
	h.navigate(section.Back(), section.Hero, "contact-to-hero")

	// Entering from cases: back returns to cases.
	h.navigate(section.DirectTo(section.Cases), section.Cases, "hero-to-cases")
	h.navigate(section.Forward(), section.Contact, "cases-to-contact")
	if got := h.ctrl.Previous(); got != section.Cases {
		t.Fatalf("previous = %s, want cases", got)
	}
	h.navigate(section.Back(), section.Cases, "contact-to-cases")

	// Leaving contact resets the remembered origin.
	if got := h.ctrl.Previous(); got != section.Hero {
		t.Fatalf("previous after contact exit = %s, want hero", got)
	}
}

func TestFallbackCommitOnPlaybackError(t *testing.T) {
	h := newHarness(t)
	hero := h.lib.ScenePlayer(string(section.Hero))
	hero.Play()
	bridge := h.lib.BridgePlayer("hero-to-about-start")
	bridge.SetPlayError(errors.New("autoplay rejected"))

	if err := h.ctrl.RequestForward("test"); err != nil {
		t.Fatalf("request forward: %v", err)
	}
	h.pumpLoop(section.Hero)
	h.sched.Advance(config.Default().Timing.SettleDelay())

	// Playback was rejected: the destination is reached anyway, immediately.
	if got := h.ctrl.Current(); got != section.AboutStart {
		t.Fatalf("current = %s, want about-start", got)
	}
	last := h.lastEvent()
	if last.Kind != engine.KindCommitted || !last.Fallback {
		t.Fatalf("last event = %+v, want fallback commit", last)
	}
	if !h.lib.ScenePlayer(string(section.AboutStart)).Playing() {
		t.Fatal("target scene not playing after fallback")
	}
}

func TestMissingBridgeCommitsImmediately(t *testing.T) {
	graph := section.Embedded()
	lib := scripted.NewLibrary()
	lib.AddScene(string(section.AboutStart), scripted.NewPlayer(sceneDuration))
	lib.AddScene(string(section.About), scripted.NewPlayer(sceneDuration))

	manual := sched.NewManual()
	ctrl := engine.New(graph, lib, manual, config.Default().Timing, nil)
	t.Cleanup(ctrl.Close)

	// Move off hero first; hero's exits need a loop wait and the scene is
	// missing, which exercises the skip path too.
	if err := ctrl.RequestForward("test"); err != nil {
		t.Fatalf("request forward: %v", err)
	}
	manual.RunFrame()
	if got := ctrl.Current(); got != section.AboutStart {
		t.Fatalf("current = %s, want about-start", got)
	}

	if err := ctrl.RequestForward("test"); err != nil {
		t.Fatalf("second request: %v", err)
	}
	if got := ctrl.Current(); got != section.About {
		t.Fatalf("current = %s, want about", got)
	}
	if ctrl.Busy() {
		t.Fatal("controller busy after immediate commit")
	}
}

func TestBridgeNotReadyPlaysAfterCanPlay(t *testing.T) {
	h := newHarness(t)
	h.navigate(section.Forward(), section.AboutStart, "hero-to-about-start")

	bridge := h.lib.BridgePlayer("about-start-to-about")
	bridge.SetReady(0)

	if err := h.ctrl.RequestForward("test"); err != nil {
		t.Fatalf("request forward: %v", err)
	}
	h.sched.Advance(config.Default().Timing.SettleDelay())
	if bridge.Playing() {
		t.Fatal("bridge played before it was ready")
	}

	bridge.FireCanPlay()
	if !bridge.Playing() {
		t.Fatal("bridge not playing after canplay")
	}
	bridge.Advance(bridgeDuration + time.Millisecond)
	h.sched.RunFrames(2)
	if got := h.ctrl.Current(); got != section.About {
		t.Fatalf("current = %s, want about", got)
	}
}

func TestBridgeReadinessTimeoutForcesPlayback(t *testing.T) {
	h := newHarness(t)
	h.navigate(section.Forward(), section.AboutStart, "hero-to-about-start")

	bridge := h.lib.BridgePlayer("about-start-to-about")
	bridge.SetReady(0)

	if err := h.ctrl.RequestForward("test"); err != nil {
		t.Fatalf("request forward: %v", err)
	}
	h.sched.Advance(config.Default().Timing.SettleDelay())
	h.sched.Advance(config.Default().Timing.SeekTimeout())
	if !bridge.Playing() {
		t.Fatal("bridge not forced to play after readiness timeout")
	}
}

func TestReplaceGraphOnlyWhileIdle(t *testing.T) {
	h := newHarness(t)
	hero := h.lib.ScenePlayer(string(section.Hero))
	hero.Play()

	if !h.ctrl.ReplaceGraph(section.Embedded()) {
		t.Fatal("replace refused while idle")
	}
	if err := h.ctrl.RequestForward("test"); err != nil {
		t.Fatalf("request forward: %v", err)
	}
	if h.ctrl.ReplaceGraph(section.Embedded()) {
		t.Fatal("replace allowed during loop wait")
	}
}

func TestCloseDeniesRequests(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Close()
	if err := h.ctrl.RequestForward("test"); !errors.Is(err, engine.ErrClosed) {
		t.Fatalf("request after close: err = %v, want ErrClosed", err)
	}
}
