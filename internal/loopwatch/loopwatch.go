// Package loopwatch detects when a looping background scene completes a
// cycle, optionally under accelerated playback.
//
// A transition out of a section with a looping background starts at the
// loop's seam, so the engine speeds the scene up and asks this package to
// report the wrap. Detection is positional: the playhead jumping backward by
// more than a second between updates means the media looped. An optional
// early-complete tolerance fires completion just before the seam to hide
// buffering stutter at the wrap itself.
package loopwatch

import (
	"log/slog"
	"sync"
	"time"

	"longtake/internal/logging"
	"longtake/internal/scene"
)

// wrapThreshold is the minimum backward jump between consecutive position
// updates that counts as a loop wrap.
const wrapThreshold = time.Second

// DefaultSpeedMultiplier compresses the remaining loop visually while the
// engine waits for the seam.
const DefaultSpeedMultiplier = 5.0

// Options tune a watch.
type Options struct {
	// SpeedMultiplier is applied to the scene for the duration of the watch;
	// values below 1 fall back to DefaultSpeedMultiplier.
	SpeedMultiplier float64
	// EarlyCompleteTolerance fires completion when the playhead is within
	// this distance of the clip end, instead of waiting for the actual wrap.
	// Zero disables early completion.
	EarlyCompleteTolerance time.Duration
}

// Watch is one in-flight loop observation. It completes at most once; after
// completion (or Cancel) every further position update is a no-op.
type Watch struct {
	mu       sync.Mutex
	player   scene.Player
	sub      *scene.Subscription
	onDone   func()
	tol      time.Duration
	lastPos  time.Duration
	havePos  bool
	finished bool
}

// Start begins observing player and invokes onDone exactly once when the
// loop completes. A nil player is logged and yields an inert watch whose
// Cancel is a no-op; Start never fails.
func Start(player scene.Player, opts Options, onDone func(), logger *slog.Logger) *Watch {
	if logger == nil {
		logger = logging.NewNop()
	}
	if player == nil {
		logger.Warn("loop watch requested without a scene handle")
		return &Watch{finished: true}
	}

	speed := opts.SpeedMultiplier
	if speed < 1 {
		speed = DefaultSpeedMultiplier
	}

	w := &Watch{
		player: player,
		onDone: onDone,
		tol:    opts.EarlyCompleteTolerance,
	}
	player.SetRate(speed)
	w.sub = player.Subscribe(scene.EventTimeUpdate, w.observe)

	// The playhead may already sit inside the tolerance window; checking once
	// up front avoids waiting a full loop for a tick that would fire anyway.
	w.checkEarly(player.Position())
	return w
}

func (w *Watch) observe(event scene.Event) {
	w.mu.Lock()
	if w.finished {
		w.mu.Unlock()
		return
	}
	pos := event.Position
	if w.havePos && w.lastPos-pos > wrapThreshold {
		w.completeLocked()
		return
	}
	w.lastPos = pos
	w.havePos = true
	w.mu.Unlock()

	w.checkEarly(pos)
}

func (w *Watch) checkEarly(pos time.Duration) {
	w.mu.Lock()
	if w.finished || w.tol <= 0 {
		w.mu.Unlock()
		return
	}
	duration := w.player.Duration()
	if duration > 0 && duration-pos <= w.tol {
		w.completeLocked()
		return
	}
	w.mu.Unlock()
}

// completeLocked finishes the watch and releases the lock before invoking
// the completion callback, so the callback may re-enter the player freely.
func (w *Watch) completeLocked() {
	w.finished = true
	sub := w.sub
	w.sub = nil
	done := w.onDone
	w.onDone = nil
	player := w.player
	w.mu.Unlock()

	sub.Cancel()
	player.SetRate(1)
	if done != nil {
		done()
	}
}

// Cancel stops the watch without firing completion. Safe at any time,
// including after natural completion, and restores normal playback rate when
// the watch was still live.
func (w *Watch) Cancel() {
	w.mu.Lock()
	if w.finished {
		w.mu.Unlock()
		return
	}
	w.finished = true
	sub := w.sub
	w.sub = nil
	w.onDone = nil
	player := w.player
	w.mu.Unlock()

	sub.Cancel()
	if player != nil {
		player.SetRate(1)
	}
}

// Finished reports whether the watch has completed or been cancelled.
func (w *Watch) Finished() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finished
}
