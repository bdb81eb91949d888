// Package daemon coordinates the long-running longtake process.
//
// It wires the section graph, the transition controller, the input gateway,
// the visibility coordinator, and the journal into a single lifecycle with
// flock-based locking to prevent multiple instances. Without a renderer
// attached the daemon drives scripted players from a wall-clock ticker, so
// the full navigation surface stays exercisable over IPC.
//
// Keep orchestration logic here: transition semantics live in engine, gesture
// policy in inputgate, persistence in journal.
package daemon
