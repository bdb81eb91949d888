package scene

import "time"

// ReadyState mirrors the readiness ladder of media elements.
type ReadyState int

const (
	ReadyNothing ReadyState = iota
	ReadyMetadata
	ReadyCurrentData
	ReadyFutureData
	ReadyEnoughData
)

func (r ReadyState) String() string {
	switch r {
	case ReadyNothing:
		return "nothing"
	case ReadyMetadata:
		return "metadata"
	case ReadyCurrentData:
		return "current-data"
	case ReadyFutureData:
		return "future-data"
	case ReadyEnoughData:
		return "enough-data"
	default:
		return "unknown"
	}
}

// EventKind enumerates the playback events the engine subscribes to.
type EventKind int

const (
	EventLoadedData EventKind = iota
	EventCanPlay
	EventTimeUpdate
	EventEnded
	EventSeeking
	EventSeeked
	EventWaiting
)

func (k EventKind) String() string {
	switch k {
	case EventLoadedData:
		return "loadeddata"
	case EventCanPlay:
		return "canplay"
	case EventTimeUpdate:
		return "timeupdate"
	case EventEnded:
		return "ended"
	case EventSeeking:
		return "seeking"
	case EventSeeked:
		return "seeked"
	case EventWaiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// Event is one playback notification. Position carries the playhead at the
// time of the event.
type Event struct {
	Kind     EventKind
	Position time.Duration
}

// Player is the entire contract the engine holds over a scene's media.
// Anything rendering it (video element, canvas, external process) lives
// outside the engine. Implementations deliver events on a single goroutine;
// the engine serializes its own state.
type Player interface {
	// Play begins or resumes playback. It returns an error when the runtime
	// rejects playback (for example an autoplay policy); the engine recovers
	// from that by committing the transition without the bridge.
	Play() error
	Pause()
	Seek(pos time.Duration)
	SetRate(rate float64)
	// Load begins fetching media data if it is not already buffered.
	Load()
	Position() time.Duration
	Duration() time.Duration
	ReadyState() ReadyState
	// Subscribe registers fn for events of the given kind and returns a
	// cancelable subscription. Implementations must tolerate Cancel being
	// called from inside fn.
	Subscribe(kind EventKind, fn func(Event)) *Subscription
}

// Library resolves the media handles for sections and bridge clips. A nil
// player is a valid answer meaning the handle is unavailable; the engine
// logs and falls back rather than failing.
type Library interface {
	Scene(name string) Player
	Bridge(clip string) Player
}
