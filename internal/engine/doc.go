// Package engine owns the transition state machine at the center of the
// experience: which section is current, which bridge clip is in flight, and
// when the target section may be committed.
//
// The machine has three states. Idle holds a current section. WaitingForLoop
// holds the current section plus the edge to follow once the section's
// looping background reaches its seam. PlayingBridge covers priming the
// target, playing the bridge clip, and the double-deferred commit after the
// clip ends. At most one transition is in flight system-wide; requests that
// arrive while one is running are dropped, not queued. The sole exception is
// a contrary request during a loop wait, which cancels the wait and replaces
// the pending edge.
//
// The engine never blocks and never fails across its public boundary for
// navigation outcomes: a denied request is an ordinary false return, a
// missing media handle or rejected playback degrades to an immediate commit
// (an instant cut instead of a stuck screen), and every failure path ends in
// a safe state plus a log record.
package engine
