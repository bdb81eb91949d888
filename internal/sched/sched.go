// Package sched provides the cooperative scheduling primitives the transition
// engine sequences media side effects with: one-shot timers and render-frame
// barriers.
//
// The engine never sleeps or blocks; it registers callbacks and returns. The
// Real scheduler backs those callbacks with wall-clock timers, the Manual
// scheduler lets tests pump frames and advance time deterministically.
package sched

import (
	"sync"
	"time"
)

// Scheduler dispatches deferred work. Implementations must run callbacks
// sequentially with respect to themselves; callers serialize their own state.
type Scheduler interface {
	// After runs fn once d has elapsed. The returned function cancels the
	// timer; cancelling after the callback ran is a no-op.
	After(d time.Duration, fn func()) (cancel func())
	// NextFrame runs fn at the next render-frame boundary. Chaining two
	// NextFrame calls yields the double-deferred barrier used to commit a
	// section only after visual state has settled.
	NextFrame(fn func())
}

// Real is a wall-clock scheduler with a fixed frame interval.
type Real struct {
	frame time.Duration
}

// NewReal builds a Real scheduler. A non-positive frame interval falls back
// to 16ms.
func NewReal(frame time.Duration) *Real {
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	return &Real{frame: frame}
}

func (r *Real) After(d time.Duration, fn func()) func() {
	timer := time.AfterFunc(d, fn)
	return func() { timer.Stop() }
}

func (r *Real) NextFrame(fn func()) {
	time.AfterFunc(r.frame, fn)
}

// Manual is a deterministic scheduler for tests. Time only moves through
// Advance and frames only fire through RunFrame.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
	frames []func()
}

type manualTimer struct {
	due       time.Duration
	seq       int
	fn        func()
	cancelled bool
}

// NewManual builds a Manual scheduler starting at time zero.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) After(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	timer := &manualTimer{due: m.now + d, seq: m.seq, fn: fn}
	m.seq++
	m.timers = append(m.timers, timer)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		timer.cancelled = true
	}
}

func (m *Manual) NextFrame(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, fn)
}

// RunFrame fires the frame callbacks queued before the call. Callbacks queued
// by those callbacks wait for the next RunFrame, mirroring real frame
// boundaries.
func (m *Manual) RunFrame() {
	m.mu.Lock()
	due := m.frames
	m.frames = nil
	m.mu.Unlock()
	for _, fn := range due {
		fn()
	}
}

// RunFrames pumps n frame boundaries.
func (m *Manual) RunFrames(n int) {
	for i := 0; i < n; i++ {
		m.RunFrame()
	}
}

// Advance moves the clock forward and fires due timers in due-then-creation
// order. Timers scheduled by fired callbacks run in the same Advance when
// they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var next *manualTimer
		for _, timer := range m.timers {
			if timer.cancelled || timer.due > target {
				continue
			}
			if next == nil || timer.due < next.due || (timer.due == next.due && timer.seq < next.seq) {
				next = timer
			}
		}
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		next.cancelled = true
		if next.due > m.now {
			m.now = next.due
		}
		fn := next.fn
		m.mu.Unlock()
		fn()
	}
}

// PendingTimers reports how many timers are armed, for leak assertions.
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, timer := range m.timers {
		if !timer.cancelled {
			count++
		}
	}
	return count
}

// PendingFrames reports how many frame callbacks are queued.
func (m *Manual) PendingFrames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}
