// Command longtake is the control CLI for the longtake daemon: it launches
// and stops the daemon, drives navigation and gestures over IPC, and inspects
// the transition journal and scene graph.
package main
