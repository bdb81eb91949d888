// Package logging assembles structured slog loggers and formatting helpers
// used across the longtake engine.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and defines the standardized field names (component, section,
// transition_id, clip) so every part of the transition pipeline tags log lines
// the same way. The package also provides a no-op logger for tests and wiring
// code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing as the rest of the system.
package logging
