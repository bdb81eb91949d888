package engine

import (
	"log/slog"
	"sync"

	"longtake/internal/config"
	"longtake/internal/logging"
	"longtake/internal/scene"
	"longtake/internal/sched"
	"longtake/internal/section"
)

// Controller is the transition state machine. All mutation happens under one
// mutex in response to discrete events (requests, playback events, timers);
// the controller registers callbacks and returns instead of ever blocking.
type Controller struct {
	graph     *section.Graph
	lib       scene.Library
	scheduler sched.Scheduler
	timing    config.Timing
	logger    *slog.Logger
	recorder  Recorder

	mu        sync.Mutex
	state     machineState
	previous  section.Section
	pending   *attempt
	watch     loopWatch
	attempt   *attempt
	listeners []func(Event)
	closed    bool
}

// loopWatch is the slice of loopwatch.Watch the controller needs; narrowed
// for substitution in tests.
type loopWatch interface {
	Cancel()
}

// Option configures optional controller behavior.
type Option func(*Controller)

// WithRecorder attaches a transition recorder.
func WithRecorder(recorder Recorder) Option {
	return func(c *Controller) { c.recorder = recorder }
}

// New constructs a controller idle on hero. A nil scheduler falls back to a
// wall-clock scheduler at the configured frame interval; a nil logger is
// replaced with a no-op.
func New(graph *section.Graph, lib scene.Library, scheduler sched.Scheduler, timing config.Timing, logger *slog.Logger, opts ...Option) *Controller {
	if scheduler == nil {
		scheduler = sched.NewReal(timing.FrameInterval())
	}
	c := &Controller{
		graph:     graph,
		lib:       lib,
		scheduler: scheduler,
		timing:    timing,
		logger:    logging.NewComponentLogger(logger, "engine"),
		state:     machineState{kind: stateIdle, current: section.Hero},
		previous:  section.Hero,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify registers a listener for controller events. Listeners run on the
// goroutine that triggered the event and must not call back into the
// controller.
func (c *Controller) Notify(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Current returns the committed section.
func (c *Controller) Current() section.Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.current
}

// Previous returns the remembered hero-level origin used to resolve contact
// exits.
func (c *Controller) Previous() section.Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previous
}

// Transitioning reports whether a bridge transition is in flight. It is
// false during a loop wait: the machine is still rendering the source
// section, only sped up.
func (c *Controller) Transitioning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.kind == statePlayingBridge
}

// Busy reports whether any navigation work is outstanding, including a loop
// wait. The input gateway swallows gestures while Busy.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.kind != stateIdle
}

// Snapshot returns the externally visible machine state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		State:          c.state.kind.String(),
		Current:        c.state.current,
		Transitioning:  c.state.kind == statePlayingBridge,
		WaitingForLoop: c.state.kind == stateWaitingForLoop,
		Previous:       c.previous,
	}
	if c.state.kind != stateIdle {
		snap.Target = c.state.edge.To
		snap.Clip = c.state.edge.Clip
	}
	return snap
}

// ReplaceGraph swaps the transition table. Only allowed while idle so an
// in-flight transition never straddles two tables; returns false otherwise.
func (c *Controller) ReplaceGraph(graph *section.Graph) bool {
	if graph == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.kind != stateIdle {
		return false
	}
	c.graph = graph
	return true
}

// Close tears the controller down: the outstanding loop watch is cancelled
// (restoring playback rate), timers are stopped, and all further requests
// are denied.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	att := c.attempt
	watch := c.watch
	c.attempt = nil
	c.watch = nil
	c.pending = nil
	c.mu.Unlock()

	if watch != nil {
		watch.Cancel()
	}
	if att != nil {
		att.dispose()
	}
}

// emit delivers an event to all listeners. Never called with the lock held.
func (c *Controller) emit(event Event) {
	c.mu.Lock()
	listeners := make([]func(Event), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(event)
	}
}

func (c *Controller) record(rec TransitionRecord) {
	if c.recorder != nil {
		c.recorder.RecordTransition(rec)
	}
}
