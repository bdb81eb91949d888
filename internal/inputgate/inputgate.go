// Package inputgate turns raw wheel and touch gestures into navigation
// requests.
//
// Gestures are noisy: trackpads emit streams of small deltas and a single
// swipe produces dozens of move events. The gateway applies a magnitude
// threshold, a cooldown between accepted gestures, and the per-section wheel
// policy before anything reaches the transition controller.
package inputgate

import (
	"log/slog"
	"sync"
	"time"

	"longtake/internal/logging"
	"longtake/internal/section"
)

// Navigator is the slice of the transition controller the gateway drives.
type Navigator interface {
	Busy() bool
	Current() section.Section
	RequestForward(trigger string) error
	RequestBack(trigger string) error
}

// Verdict says what happened to a gesture.
type Verdict int

const (
	// Accepted means a navigation request was issued.
	Accepted Verdict = iota
	// BelowThreshold means the gesture was too small to count.
	BelowThreshold
	// CoolingDown means a gesture was accepted too recently.
	CoolingDown
	// Busy means the controller is mid-transition; the gesture is swallowed
	// so it does not queue up and fire later.
	Busy
	// WheelDisabled means the current section does not react to the wheel.
	WheelDisabled
	// NoEdge means the graph has no transition in that direction.
	NoEdge
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case BelowThreshold:
		return "below-threshold"
	case CoolingDown:
		return "cooling-down"
	case Busy:
		return "busy"
	case WheelDisabled:
		return "wheel-disabled"
	case NoEdge:
		return "no-edge"
	default:
		return "unknown"
	}
}

// Options tune the gateway.
type Options struct {
	// WheelThreshold is the minimum absolute wheel delta.
	WheelThreshold float64
	// TouchThreshold is the minimum absolute swipe distance in pixels.
	TouchThreshold float64
	// Cooldown is the minimum spacing between accepted gestures.
	Cooldown time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Gateway gates gestures in front of a Navigator.
type Gateway struct {
	nav    Navigator
	opts   Options
	logger *slog.Logger

	mu           sync.Mutex
	graph        *section.Graph
	lastAccepted time.Time
}

// New builds a gateway. Non-positive thresholds accept any nonzero gesture.
func New(nav Navigator, graph *section.Graph, opts Options, logger *slog.Logger) *Gateway {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Gateway{
		nav:    nav,
		graph:  graph,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "inputgate"),
	}
}

// SetGraph swaps the transition table the wheel policy is read from. Called
// alongside the controller's graph replacement on hot reload.
func (g *Gateway) SetGraph(graph *section.Graph) {
	if graph == nil {
		return
	}
	g.mu.Lock()
	g.graph = graph
	g.mu.Unlock()
}

// Wheel feeds one wheel delta. Positive deltas scroll forward.
func (g *Gateway) Wheel(delta float64) Verdict {
	if abs(delta) < g.opts.WheelThreshold {
		return BelowThreshold
	}
	g.mu.Lock()
	graph := g.graph
	g.mu.Unlock()
	if !graph.Info(g.nav.Current()).Wheel {
		return WheelDisabled
	}
	return g.gesture(delta > 0, "wheel")
}

// Touch feeds one completed swipe. Positive distances swipe forward (finger
// moving up the screen).
func (g *Gateway) Touch(distance float64) Verdict {
	if abs(distance) < g.opts.TouchThreshold {
		return BelowThreshold
	}
	return g.gesture(distance > 0, "touch")
}

func (g *Gateway) gesture(forward bool, trigger string) Verdict {
	if g.nav.Busy() {
		return Busy
	}

	g.mu.Lock()
	now := g.opts.Now()
	if !g.lastAccepted.IsZero() && now.Sub(g.lastAccepted) < g.opts.Cooldown {
		g.mu.Unlock()
		return CoolingDown
	}
	g.mu.Unlock()

	var err error
	if forward {
		err = g.nav.RequestForward(trigger)
	} else {
		err = g.nav.RequestBack(trigger)
	}
	if err != nil {
		g.logger.Debug("gesture rejected",
			logging.String(logging.FieldIntent, trigger),
			logging.Error(err))
		return NoEdge
	}

	g.mu.Lock()
	g.lastAccepted = now
	g.mu.Unlock()
	g.logger.Debug("gesture accepted", logging.String(logging.FieldIntent, trigger))
	return Accepted
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
