// Package visibility tracks when the section UI overlay should be shown.
//
// The overlay hides the moment a transition is accepted and reappears, after
// a short debounce, only when the destination section carries UI at all. The
// coordinator is a pure consumer of controller events; whatever renders the
// overlay polls Current or subscribes to Notify.
package visibility

import (
	"log/slog"
	"sync"
	"time"

	"longtake/internal/engine"
	"longtake/internal/logging"
	"longtake/internal/sched"
	"longtake/internal/section"
)

// State is the overlay state at one point in time.
type State struct {
	// UIVisible is true when the section overlay should be on screen.
	UIVisible bool `json:"ui_visible"`
	// LeavingContact is true from the moment a contact exit is accepted
	// until it commits; the contact form needs to tear down before the
	// frozen backdrop starts moving again.
	LeavingContact bool `json:"leaving_contact"`
	// Section is the committed section the state was computed for.
	Section section.Section `json:"section"`
}

// Coordinator derives overlay state from controller events.
type Coordinator struct {
	graph     *section.Graph
	scheduler sched.Scheduler
	debounce  time.Duration
	logger    *slog.Logger

	mu         sync.Mutex
	state      State
	cancelShow func()
	listeners  []func(State)
	closed     bool
}

// New builds a coordinator. The initial state shows the overlay when the
// starting section carries UI.
func New(graph *section.Graph, scheduler sched.Scheduler, debounce time.Duration, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		graph:     graph,
		scheduler: scheduler,
		debounce:  debounce,
		logger:    logging.NewComponentLogger(logger, "visibility"),
		state: State{
			UIVisible: graph.Info(section.Hero).UI,
			Section:   section.Hero,
		},
	}
}

// Current returns the overlay state.
func (c *Coordinator) Current() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Notify registers a listener invoked on every state change.
func (c *Coordinator) Notify(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Observe consumes one controller event. Wire it with Controller.Notify.
func (c *Coordinator) Observe(event engine.Event) {
	switch event.Kind {
	case engine.KindExitStarted:
		c.hide(event)
	case engine.KindCommitted:
		c.landed(event)
	}
}

func (c *Coordinator) hide(event engine.Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	cancel := c.cancelShow
	c.cancelShow = nil
	c.state.UIVisible = false
	c.state.LeavingContact = event.From == section.Contact
	state := c.state
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.logger.Debug("overlay hidden",
		logging.String(logging.FieldSection, string(event.From)),
		logging.String(logging.FieldTarget, string(event.To)))
	notify(listeners, state)
}

func (c *Coordinator) landed(event engine.Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.LeavingContact = false
	c.state.Section = event.To
	state := c.state
	listeners := c.snapshotListenersLocked()
	hasUI := c.graph.Info(event.To).UI
	c.mu.Unlock()

	notify(listeners, state)
	if !hasUI {
		return
	}

	// The debounce absorbs the commit frames: the overlay appears once the
	// destination scene is visibly settled, not mid-swap.
	cancel := c.scheduler.After(c.debounce, func() { c.show(event.To) })
	c.mu.Lock()
	if c.closed || c.state.Section != event.To {
		c.mu.Unlock()
		cancel()
		return
	}
	c.cancelShow = cancel
	c.mu.Unlock()
}

func (c *Coordinator) show(target section.Section) {
	c.mu.Lock()
	if c.closed || c.state.Section != target || c.state.UIVisible {
		c.mu.Unlock()
		return
	}
	c.cancelShow = nil
	c.state.UIVisible = true
	state := c.state
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()

	c.logger.Debug("overlay shown", logging.String(logging.FieldSection, string(target)))
	notify(listeners, state)
}

// Close cancels any pending show and stops further state changes.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancelShow
	c.cancelShow = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *Coordinator) snapshotListenersLocked() []func(State) {
	listeners := make([]func(State), len(c.listeners))
	copy(listeners, c.listeners)
	return listeners
}

func notify(listeners []func(State), state State) {
	for _, fn := range listeners {
		fn(state)
	}
}
