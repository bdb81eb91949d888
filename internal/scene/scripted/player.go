// Package scripted provides deterministic in-memory scene players.
//
// The engine's state machine is defined entirely against scene.Player, so a
// scripted player that moves its playhead only when told to is enough to
// exercise every transition path: tests advance the clock by hand, and the
// headless daemon drives players from a wall-clock ticker when no real
// renderer is attached.
package scripted

import (
	"sync"
	"time"

	"longtake/internal/scene"
)

// Player is a scene.Player whose playback is driven by explicit Advance
// calls. Zero media is involved; positions, rates, and readiness are plain
// state.
type Player struct {
	mu        sync.Mutex
	duration  time.Duration
	pos       time.Duration
	rate      float64
	playing   bool
	looping   bool
	ready     scene.ReadyState
	playErr   error
	playCalls int
	seekCalls int
	lastSeek  time.Duration
	nextSubID int
	subs      map[scene.EventKind]map[int]func(scene.Event)
}

// NewPlayer builds a non-looping player of the given duration, ready to play.
func NewPlayer(duration time.Duration) *Player {
	return &Player{
		duration: duration,
		rate:     1,
		ready:    scene.ReadyEnoughData,
		subs:     make(map[scene.EventKind]map[int]func(scene.Event)),
	}
}

// NewLooping builds a looping player of the given duration, ready to play.
func NewLooping(duration time.Duration) *Player {
	p := NewPlayer(duration)
	p.looping = true
	return p
}

func (p *Player) Play() error {
	p.mu.Lock()
	p.playCalls++
	err := p.playErr
	if err == nil {
		p.playing = true
	}
	p.mu.Unlock()
	return err
}

func (p *Player) Pause() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}

func (p *Player) Seek(pos time.Duration) {
	p.mu.Lock()
	if pos < 0 {
		pos = 0
	}
	if p.duration > 0 && pos > p.duration {
		pos = p.duration
	}
	p.pos = pos
	p.seekCalls++
	p.lastSeek = pos
	p.mu.Unlock()
	p.emit(scene.EventSeeking, pos)
	p.emit(scene.EventSeeked, pos)
}

func (p *Player) SetRate(rate float64) {
	p.mu.Lock()
	p.rate = rate
	p.mu.Unlock()
}

func (p *Player) Load() {
	p.mu.Lock()
	if p.ready < scene.ReadyCurrentData {
		p.ready = scene.ReadyCurrentData
	}
	p.mu.Unlock()
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

func (p *Player) ReadyState() scene.ReadyState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

func (p *Player) Subscribe(kind scene.EventKind, fn func(scene.Event)) *scene.Subscription {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	if p.subs[kind] == nil {
		p.subs[kind] = make(map[int]func(scene.Event))
	}
	p.subs[kind][id] = fn
	p.mu.Unlock()

	return scene.NewSubscription(func() {
		p.mu.Lock()
		delete(p.subs[kind], id)
		p.mu.Unlock()
	})
}

// Advance moves the playhead as if wall time elapsed while playing, applying
// the current playback rate. Looping players wrap and report the post-wrap
// position, producing the backward jump loop detection keys on. Non-looping
// players stop at the end and fire Ended.
func (p *Player) Advance(wall time.Duration) {
	p.mu.Lock()
	if !p.playing || p.duration <= 0 {
		p.mu.Unlock()
		return
	}
	p.pos += time.Duration(float64(wall) * p.rate)
	ended := false
	if p.looping {
		for p.pos >= p.duration {
			p.pos -= p.duration
		}
	} else if p.pos >= p.duration {
		p.pos = p.duration
		p.playing = false
		ended = true
	}
	pos := p.pos
	p.mu.Unlock()

	p.emit(scene.EventTimeUpdate, pos)
	if ended {
		p.emit(scene.EventEnded, pos)
	}
}

// FireCanPlay marks the player ready and emits CanPlay.
func (p *Player) FireCanPlay() {
	p.mu.Lock()
	if p.ready < scene.ReadyFutureData {
		p.ready = scene.ReadyFutureData
	}
	pos := p.pos
	p.mu.Unlock()
	p.emit(scene.EventCanPlay, pos)
}

// FireEnded stops playback and emits Ended regardless of position.
func (p *Player) FireEnded() {
	p.mu.Lock()
	p.playing = false
	pos := p.pos
	p.mu.Unlock()
	p.emit(scene.EventEnded, pos)
}

// FireTimeUpdate emits a TimeUpdate at the current position without moving
// the playhead.
func (p *Player) FireTimeUpdate() {
	p.mu.Lock()
	pos := p.pos
	p.mu.Unlock()
	p.emit(scene.EventTimeUpdate, pos)
}

// SetReady overrides the ready state.
func (p *Player) SetReady(state scene.ReadyState) {
	p.mu.Lock()
	p.ready = state
	p.mu.Unlock()
}

// SetPlayError makes subsequent Play calls fail with err, simulating an
// autoplay rejection.
func (p *Player) SetPlayError(err error) {
	p.mu.Lock()
	p.playErr = err
	p.mu.Unlock()
}

// SetPosition teleports the playhead without emitting events.
func (p *Player) SetPosition(pos time.Duration) {
	p.mu.Lock()
	p.pos = pos
	p.mu.Unlock()
}

// Playing reports whether playback is active.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Rate returns the current playback rate.
func (p *Player) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// PlayCalls returns how many times Play was invoked.
func (p *Player) PlayCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playCalls
}

// SeekCalls returns how many times Seek was invoked.
func (p *Player) SeekCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seekCalls
}

// LastSeek returns the target of the most recent Seek.
func (p *Player) LastSeek() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeek
}

func (p *Player) emit(kind scene.EventKind, pos time.Duration) {
	p.mu.Lock()
	handlers := make([]func(scene.Event), 0, len(p.subs[kind]))
	for _, fn := range p.subs[kind] {
		handlers = append(handlers, fn)
	}
	p.mu.Unlock()

	event := scene.Event{Kind: kind, Position: pos}
	for _, fn := range handlers {
		fn(event)
	}
}
