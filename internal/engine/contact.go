package engine

import (
	"time"

	"longtake/internal/logging"
	"longtake/internal/scene"
)

// contactFreezeBackoff keeps the freeze point a hair before the loop end so
// the held frame is the clip's last, not a wrapped frame zero.
const contactFreezeBackoff = 10 * time.Millisecond

// armContactExitFreeze watches the contact scene's looping media while an
// exit waits for the seam. The loop must never be seen wrapping back to its
// first frame under the outgoing bridge, so the playhead is frozen just
// before the end as soon as a wrap is imminent.
func (c *Controller) armContactExitFreeze(att *attempt, player scene.Player) {
	window := c.timing.NearEndWindow()
	sub := player.Subscribe(scene.EventTimeUpdate, func(event scene.Event) {
		duration := player.Duration()
		if duration <= 0 || duration-event.Position > window {
			return
		}
		c.freezeContactScene(att, player)
	})
	c.mu.Lock()
	if c.attempt == att {
		att.group.Add(sub)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	sub.Cancel()
}

// freezeContactScene pauses the looping media and parks the playhead just
// before the end, then reports the loop complete so the exit bridge starts
// over the held frame. Runs at most once per attempt, reached from either
// the near-end watch or the loop monitor's completion.
func (c *Controller) freezeContactScene(att *attempt, player scene.Player) {
	c.mu.Lock()
	if c.closed || c.attempt != att || att.frozeContact {
		c.mu.Unlock()
		return
	}
	att.frozeContact = true
	c.mu.Unlock()

	player.Pause()
	freezePoint := player.Duration() - contactFreezeBackoff
	if freezePoint < 0 {
		freezePoint = 0
	}
	player.Seek(freezePoint)

	c.logger.Debug("contact loop frozen on last frame",
		logging.String(logging.FieldTransitionID, att.id),
		logging.Duration("freeze_point", freezePoint))
	c.onLoopComplete(att)
}
