package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"longtake/internal/logging"
	"longtake/internal/loopwatch"
	"longtake/internal/scene"
	"longtake/internal/section"
)

var (
	// ErrBusy means a bridge is already playing; the request was dropped.
	ErrBusy = errors.New("transition in progress")
	// ErrNoEdge means the graph has no edge for the request.
	ErrNoEdge = errors.New("no matching transition")
	// ErrClosed means the controller was shut down.
	ErrClosed = errors.New("controller closed")
)

// RequestForward asks to advance along the section chain.
func (c *Controller) RequestForward(trigger string) error {
	return c.request(section.Forward(), trigger)
}

// RequestBack asks to step back along the section chain. From the contact
// section this resolves to wherever the visitor came from.
func (c *Controller) RequestBack(trigger string) error {
	return c.request(section.Back(), trigger)
}

// RequestDirect asks to jump straight to target, when the graph allows it
// from the current section.
func (c *Controller) RequestDirect(target section.Section, trigger string) error {
	return c.request(section.DirectTo(target), trigger)
}

func (c *Controller) request(intent section.Intent, trigger string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state.kind == statePlayingBridge {
		from := c.state.current
		to := c.state.edge.To
		c.mu.Unlock()
		c.logger.Debug("request dropped during bridge",
			logging.String(logging.FieldSection, string(from)),
			logging.String(logging.FieldTarget, string(to)),
			logging.String(logging.FieldIntent, intent.Kind.String()))
		return ErrBusy
	}

	edge, ok := c.resolveEdgeLocked(intent)
	if !ok {
		from := c.state.current
		c.mu.Unlock()
		return fmt.Errorf("%s from %s: %w", intent.Kind, from, ErrNoEdge)
	}

	var replacedWatch loopWatch
	var replaced *attempt
	if c.state.kind == stateWaitingForLoop {
		if c.state.edge.To == edge.To {
			c.mu.Unlock()
			return ErrBusy
		}
		// A contrary request during a loop wait wins: the wait has produced
		// no visible change yet, so swapping the destination is safe.
		replacedWatch = c.watch
		replaced = c.attempt
		c.watch = nil
		c.attempt = nil
		c.pending = nil
	}

	att := &attempt{
		id:         uuid.NewString(),
		edge:       edge,
		trigger:    trigger,
		group:      scene.NewSubscriptionGroup(),
		acceptedAt: time.Now(),
	}
	c.attempt = att
	kind := statePlayingBridge
	if edge.RequiresLoopWait {
		kind = stateWaitingForLoop
	}
	c.state = machineState{kind: kind, current: c.state.current, edge: edge}
	c.mu.Unlock()

	if replacedWatch != nil {
		replacedWatch.Cancel()
	}
	if replaced != nil {
		replaced.dispose()
		if replaced.frozeContact {
			// The displaced exit froze the contact loop; the new wait needs
			// it moving again.
			if player := c.sceneFor(replaced.edge.From); player != nil {
				if err := player.Play(); err != nil {
					c.logger.Warn("contact loop resume rejected",
						logging.String(logging.FieldTransitionID, att.id),
						logging.Error(err))
				}
			}
		}
	}

	c.logger.Info("transition accepted",
		logging.String(logging.FieldTransitionID, att.id),
		logging.String(logging.FieldSection, string(edge.From)),
		logging.String(logging.FieldTarget, string(edge.To)),
		logging.String(logging.FieldClip, string(edge.Clip)),
		logging.String(logging.FieldIntent, intent.Kind.String()),
		logging.Bool("loop_wait", edge.RequiresLoopWait))
	c.emit(Event{Kind: KindExitStarted, AttemptID: att.id, From: edge.From, To: edge.To, Clip: edge.Clip})

	if edge.RequiresLoopWait {
		c.startLoopWait(att)
	} else {
		c.beginBridge(att)
	}
	return nil
}

// resolveEdgeLocked maps an intent to a graph edge. Back from contact is the
// one place history matters: the edge mirrors the section the visitor
// entered contact from.
func (c *Controller) resolveEdgeLocked(intent section.Intent) (section.Edge, bool) {
	from := c.state.current
	if from == section.Contact && intent.Kind == section.IntentBack {
		target := section.Hero
		if c.previous == section.Cases {
			target = section.Cases
		}
		if edge, ok := c.graph.Lookup(from, section.DirectTo(target)); ok {
			return edge, true
		}
	}
	return c.graph.Lookup(from, intent)
}

func (c *Controller) startLoopWait(att *attempt) {
	c.mu.Lock()
	if c.closed || c.attempt != att {
		c.mu.Unlock()
		return
	}
	source := att.edge.From
	c.mu.Unlock()

	c.emit(Event{Kind: KindLoopWaitStarted, AttemptID: att.id, From: source, To: att.edge.To, Clip: att.edge.Clip})

	player := c.lib.Scene(string(source))
	if player == nil {
		c.logger.Warn("scene handle missing, skipping loop wait",
			logging.String(logging.FieldTransitionID, att.id),
			logging.String(logging.FieldSection, string(source)))
		c.onLoopComplete(att)
		return
	}

	if source == section.Contact {
		c.armContactExitFreeze(att, player)
	}

	// Start may detect completion synchronously when the playhead already
	// sits inside the tolerance window; onLoopComplete tolerates running
	// before the watch is stored.
	watch := loopwatch.Start(player, loopwatch.Options{
		SpeedMultiplier:        c.timing.LoopSpeedMultiplier,
		EarlyCompleteTolerance: c.timing.EarlyCompleteTolerance(),
	}, func() { c.onLoopComplete(att) }, c.logger)

	c.mu.Lock()
	if c.closed || c.attempt != att {
		c.mu.Unlock()
		watch.Cancel()
		return
	}
	if c.state.kind == stateWaitingForLoop && c.pending == nil {
		c.watch = watch
	}
	c.mu.Unlock()
}

func (c *Controller) onLoopComplete(att *attempt) {
	c.mu.Lock()
	if c.closed || c.attempt != att || c.state.kind != stateWaitingForLoop || c.pending == att {
		c.mu.Unlock()
		return
	}
	att.loopWait = time.Since(att.acceptedAt)
	c.pending = att
	watch := c.watch
	c.watch = nil
	c.mu.Unlock()

	// Completion may have come from the contact freeze rather than the
	// monitor itself; cancelling restores the playback rate either way.
	if watch != nil {
		watch.Cancel()
	}
	if att.edge.From == section.Contact {
		if player := c.sceneFor(section.Contact); player != nil {
			c.freezeContactScene(att, player)
		}
	}

	c.logger.Debug("loop completed",
		logging.String(logging.FieldTransitionID, att.id),
		logging.Duration("waited", att.loopWait))
	c.scheduler.NextFrame(func() { c.consumePending(att) })
}

// consumePending promotes a finished loop wait into a bridge on the next
// frame boundary, so a contrary request arriving in the same tick still gets
// its chance to replace the destination.
func (c *Controller) consumePending(att *attempt) {
	c.mu.Lock()
	if c.closed || c.pending != att || c.attempt != att {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.state.kind = statePlayingBridge
	c.mu.Unlock()
	c.beginBridge(att)
}
