// Package scene defines the media surface the transition engine drives.
//
// Player is the whole contract of a scene: play/pause/seek/rate plus the
// playback events the engine reacts to. Rendering is external; the engine
// only ever manipulates players through this interface, which is what makes
// the state machine testable without media hardware. Subscriptions are
// explicit objects with a single Cancel, grouped per transition attempt so
// one disposal tears down every listener the attempt registered.
package scene
