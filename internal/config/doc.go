// Package config loads, normalizes, and validates longtake configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// engine and CLI need: directories, the control socket, the timing tunables
// that sequence media side effects, input gesture thresholds, and journal and
// preload settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
