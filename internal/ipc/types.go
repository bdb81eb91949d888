package ipc

import (
	"time"

	"longtake/internal/engine"
	"longtake/internal/visibility"
)

// EngineState mirrors the controller snapshot for IPC callers.
type EngineState = engine.Snapshot

// OverlayState mirrors the visibility coordinator state.
type OverlayState = visibility.State

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon state.
type StatusResponse struct {
	Running       bool         `json:"running"`
	PID           int          `json:"pid"`
	Engine        EngineState  `json:"engine"`
	Overlay       OverlayState `json:"overlay"`
	Muted         bool         `json:"muted"`
	JournalDBPath string       `json:"journal_db_path"`
	JournalCount  int64        `json:"journal_count"`
	LockPath      string       `json:"lock_path"`
	GraphPath     string       `json:"graph_path,omitempty"`
}

// NavigateRequest issues a navigation intent. Target is only read for the
// direct intent.
type NavigateRequest struct {
	Intent string `json:"intent"`
	Target string `json:"target,omitempty"`
}

// NavigateResponse reports whether the request was accepted and the engine
// state afterwards.
type NavigateResponse struct {
	Accepted bool        `json:"accepted"`
	Message  string      `json:"message,omitempty"`
	Engine   EngineState `json:"engine"`
}

// WheelRequest feeds one wheel delta through the gesture gateway.
type WheelRequest struct {
	Delta float64 `json:"delta"`
}

// TouchRequest feeds one completed swipe distance through the gateway.
type TouchRequest struct {
	Distance float64 `json:"distance"`
}

// GestureResponse reports the gateway verdict and the engine state.
type GestureResponse struct {
	Verdict string      `json:"verdict"`
	Engine  EngineState `json:"engine"`
}

// JournalListRequest fetches recent transitions.
type JournalListRequest struct {
	Limit int `json:"limit"`
}

// JournalEntry is one committed transition on the wire.
type JournalEntry struct {
	ID          int64     `json:"id"`
	AttemptID   string    `json:"attempt_id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Clip        string    `json:"clip"`
	Trigger     string    `json:"trigger"`
	LoopWaitMS  int64     `json:"loop_wait_ms"`
	BridgeMS    int64     `json:"bridge_ms"`
	Fallback    bool      `json:"fallback"`
	Reason      string    `json:"reason,omitempty"`
	CommittedAt time.Time `json:"committed_at"`
}

// JournalListResponse contains journal entries, most recent first.
type JournalListResponse struct {
	Entries []JournalEntry `json:"entries"`
}

// MuteRequest persists the sound preference.
type MuteRequest struct {
	Muted bool `json:"muted"`
}

// MuteResponse echoes the stored preference.
type MuteResponse struct {
	Muted bool `json:"muted"`
}

// StartRequest starts the experience loop.
type StartRequest struct{}

// StartResponse indicates whether the loop was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the experience loop.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
