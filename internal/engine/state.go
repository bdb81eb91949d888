package engine

import (
	"time"

	"longtake/internal/scene"
	"longtake/internal/section"
)

type stateKind int

const (
	stateIdle stateKind = iota
	stateWaitingForLoop
	statePlayingBridge
)

func (k stateKind) String() string {
	switch k {
	case stateIdle:
		return "idle"
	case stateWaitingForLoop:
		return "waiting-for-loop"
	case statePlayingBridge:
		return "playing-bridge"
	default:
		return "unknown"
	}
}

// machineState is the tagged union the controller guards: exactly one of the
// three shapes is live at a time, which keeps combinations like "transitioning
// with a pending loop wait" unrepresentable.
type machineState struct {
	kind stateKind
	// current is the committed section. It remains the transition source
	// throughout WaitingForLoop and PlayingBridge; only commit moves it.
	current section.Section
	// edge is the transition being followed; valid outside stateIdle.
	edge section.Edge
}

// attempt is the working set of one transition: its subscriptions, timers,
// and progress markers. A fresh attempt is allocated per accepted request and
// never reused, so a stale callback can always be recognized by pointer.
type attempt struct {
	id            string
	edge          section.Edge
	trigger       string
	group         *scene.SubscriptionGroup
	cancels       []func()
	acceptedAt    time.Time
	bridgeStarted time.Time
	loopWait      time.Duration
	playedBridge  bool
	frozeContact  bool
}

func (a *attempt) addCancelLocked(cancel func()) {
	if cancel != nil {
		a.cancels = append(a.cancels, cancel)
	}
}

func (a *attempt) dispose() {
	a.group.Cancel()
	for _, cancel := range a.cancels {
		cancel()
	}
	a.cancels = nil
}

// Snapshot is the externally visible machine state.
type Snapshot struct {
	State          string          `json:"state"`
	Current        section.Section `json:"current"`
	Target         section.Section `json:"target,omitempty"`
	Clip           section.Clip    `json:"clip,omitempty"`
	Transitioning  bool            `json:"transitioning"`
	WaitingForLoop bool            `json:"waiting_for_loop"`
	Previous       section.Section `json:"previous"`
}

// EventKind enumerates controller notifications.
type EventKind int

const (
	// KindExitStarted fires the moment a request is accepted: the source
	// section's UI must hide now, before any media work begins.
	KindExitStarted EventKind = iota
	// KindLoopWaitStarted fires when the source's background loop is being
	// waited out under accelerated playback.
	KindLoopWaitStarted
	// KindBridgeStarted fires when bridge clip playback actually begins.
	KindBridgeStarted
	// KindCommitted fires when the target section became current.
	KindCommitted
)

func (k EventKind) String() string {
	switch k {
	case KindExitStarted:
		return "exit-started"
	case KindLoopWaitStarted:
		return "loop-wait-started"
	case KindBridgeStarted:
		return "bridge-started"
	case KindCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

// Event is one controller notification. Consumers (the visibility
// coordinator, the journal adapter) react to these; the controller never
// reads anything back from them.
type Event struct {
	Kind      EventKind
	AttemptID string
	From      section.Section
	To        section.Section
	Clip      section.Clip
	Fallback  bool
}

// TransitionRecord describes one committed transition for the journal.
type TransitionRecord struct {
	AttemptID   string
	From        section.Section
	To          section.Section
	Clip        section.Clip
	Trigger     string
	LoopWait    time.Duration
	Bridge      time.Duration
	Fallback    bool
	Reason      string
	CommittedAt time.Time
}

// Recorder persists transition records. Implementations must not call back
// into the controller.
type Recorder interface {
	RecordTransition(TransitionRecord)
}
