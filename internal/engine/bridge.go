package engine

import (
	"time"

	"longtake/internal/logging"
	"longtake/internal/scene"
	"longtake/internal/section"
)

func (c *Controller) sceneFor(s section.Section) scene.Player {
	return c.lib.Scene(string(s))
}

// beginBridge primes the target scene behind the curtain and schedules the
// bridge clip after a short settle delay, giving the primed seek a frame to
// take effect.
func (c *Controller) beginBridge(att *attempt) {
	c.mu.Lock()
	if c.closed || c.attempt != att {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	target := c.sceneFor(att.edge.To)
	if target != nil {
		target.Seek(0)
		target.Load()
	} else {
		c.logger.Warn("target scene handle missing",
			logging.String(logging.FieldTransitionID, att.id),
			logging.String(logging.FieldTarget, string(att.edge.To)))
	}

	bridge := c.lib.Bridge(string(att.edge.Clip))
	if bridge == nil {
		c.logger.Warn("bridge clip handle missing, committing without bridge",
			logging.String(logging.FieldTransitionID, att.id),
			logging.String(logging.FieldClip, string(att.edge.Clip)))
		c.fallbackCommit(att, target, "missing bridge clip")
		return
	}

	cancel := c.scheduler.After(c.timing.SettleDelay(), func() {
		c.startBridgePlayback(att, bridge, target)
	})
	c.mu.Lock()
	if c.attempt == att {
		att.addCancelLocked(cancel)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	cancel()
}

// startBridgePlayback waits until the bridge clip has enough data to play
// through, bounded by the seek timeout: a stalled network must never leave
// the machine stuck mid-transition.
func (c *Controller) startBridgePlayback(att *attempt, bridge, target scene.Player) {
	c.mu.Lock()
	if c.closed || c.attempt != att {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	bridge.Seek(0)
	if bridge.ReadyState() >= scene.ReadyFutureData {
		c.playBridge(att, bridge, target)
		return
	}

	bridge.Load()
	sub := bridge.Subscribe(scene.EventCanPlay, func(scene.Event) {
		c.playBridge(att, bridge, target)
	})
	cancel := c.scheduler.After(c.timing.SeekTimeout(), func() {
		c.logger.Warn("bridge clip not ready in time, playing anyway",
			logging.String(logging.FieldTransitionID, att.id),
			logging.String(logging.FieldClip, string(att.edge.Clip)))
		c.playBridge(att, bridge, target)
	})

	c.mu.Lock()
	if c.attempt == att {
		att.group.Add(sub)
		att.addCancelLocked(cancel)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	sub.Cancel()
	cancel()
}

// playBridge starts the clip exactly once per attempt; the readiness
// subscription and its timeout both funnel here.
func (c *Controller) playBridge(att *attempt, bridge, target scene.Player) {
	c.mu.Lock()
	if c.closed || c.attempt != att || att.playedBridge {
		c.mu.Unlock()
		return
	}
	att.playedBridge = true
	att.bridgeStarted = time.Now()
	edge := att.edge
	c.mu.Unlock()

	sub := bridge.Subscribe(scene.EventEnded, func(scene.Event) {
		c.finishBridge(att, target)
	})
	c.mu.Lock()
	if c.attempt != att {
		c.mu.Unlock()
		sub.Cancel()
		return
	}
	att.group.Add(sub)
	c.mu.Unlock()

	if err := bridge.Play(); err != nil {
		c.logger.Warn("bridge playback rejected",
			logging.String(logging.FieldTransitionID, att.id),
			logging.String(logging.FieldClip, string(edge.Clip)),
			logging.Error(err))
		c.fallbackCommit(att, target, "playback rejected: "+err.Error())
		return
	}

	c.emit(Event{Kind: KindBridgeStarted, AttemptID: att.id, From: edge.From, To: edge.To, Clip: edge.Clip})
}

// finishBridge swaps attention to the target scene and commits two frame
// boundaries later, once the target has rendered behind the final bridge
// frame.
func (c *Controller) finishBridge(att *attempt, target scene.Player) {
	c.mu.Lock()
	if c.closed || c.attempt != att {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	att.group.Cancel()
	if target != nil {
		target.Seek(0)
		if err := target.Play(); err != nil {
			c.logger.Warn("target scene playback rejected",
				logging.String(logging.FieldTransitionID, att.id),
				logging.String(logging.FieldTarget, string(att.edge.To)),
				logging.Error(err))
		}
	}
	c.scheduler.NextFrame(func() {
		c.scheduler.NextFrame(func() {
			c.commit(att, false, "")
		})
	})
}

// fallbackCommit lands the transition immediately when the bridge cannot be
// played. A transition never fails across the boundary: the destination is
// reached, just without the cinematic.
func (c *Controller) fallbackCommit(att *attempt, target scene.Player, reason string) {
	c.mu.Lock()
	if c.closed || c.attempt != att {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	att.group.Cancel()
	if target != nil {
		target.Seek(0)
		if err := target.Play(); err != nil {
			c.logger.Warn("target scene playback rejected",
				logging.String(logging.FieldTransitionID, att.id),
				logging.String(logging.FieldTarget, string(att.edge.To)),
				logging.Error(err))
		}
	}
	c.commit(att, true, reason)
}

func (c *Controller) commit(att *attempt, fallback bool, reason string) {
	c.mu.Lock()
	if c.closed || c.attempt != att {
		c.mu.Unlock()
		return
	}
	edge := att.edge
	from := c.state.current
	c.state = machineState{kind: stateIdle, current: edge.To}
	switch {
	case edge.To == section.Contact && from == section.Cases:
		c.previous = section.Cases
	case edge.To == section.Contact:
		c.previous = section.Hero
	case from == section.Contact:
		c.previous = section.Hero
	}
	c.attempt = nil
	c.watch = nil
	c.pending = nil
	rec := TransitionRecord{
		AttemptID:   att.id,
		From:        from,
		To:          edge.To,
		Clip:        edge.Clip,
		Trigger:     att.trigger,
		LoopWait:    att.loopWait,
		Fallback:    fallback,
		Reason:      reason,
		CommittedAt: time.Now(),
	}
	if att.playedBridge {
		rec.Bridge = time.Since(att.bridgeStarted)
	}
	c.mu.Unlock()

	att.dispose()
	c.logger.Info("transition committed",
		logging.String(logging.FieldTransitionID, att.id),
		logging.String(logging.FieldSection, string(from)),
		logging.String(logging.FieldTarget, string(edge.To)),
		logging.Bool("fallback", fallback))
	c.emit(Event{Kind: KindCommitted, AttemptID: att.id, From: from, To: edge.To, Clip: edge.Clip, Fallback: fallback})
	c.record(rec)
}
