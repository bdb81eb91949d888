// Package daemonctl orchestrates daemon process lifecycle from the CLI:
// launching a detached daemon, waiting for its socket, and stopping it.
package daemonctl

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"longtake/internal/ipc"
)

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	ConfigPath string
	LogLevel   string
}

// StartState describes how an ensure-running request was satisfied.
type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult captures daemon start orchestration state.
type StartResult struct {
	State    StartState
	Launched bool
	Message  string
}

// Launch starts a detached longtake daemon process.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	args := []string{"run"}
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		args = append(args, "--log-level", level)
	}

	proc := exec.Command(executablePath, args...)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForClient waits for IPC socket availability and returns a connected
// client.
func WaitForClient(socketPath string, timeout time.Duration) (*ipc.Client, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(socketPath)
		if err == nil {
			return client, nil
		}
		lastErr = err
		time.Sleep(200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("daemon socket %s not available", socketPath)
	}
	return nil, lastErr
}

// EnsureRunning connects to a running daemon or launches one and waits for
// it to come up.
func EnsureRunning(socketPath string, opts LaunchOptions) (*ipc.Client, StartResult, error) {
	if client, err := ipc.Dial(socketPath); err == nil {
		return client, StartResult{State: StartStateAlreadyRunning, Message: "daemon already running"}, nil
	}

	executable, err := os.Executable()
	if err != nil {
		return nil, StartResult{}, fmt.Errorf("resolve executable: %w", err)
	}
	if err := Launch(executable, opts); err != nil {
		return nil, StartResult{}, err
	}

	client, err := WaitForClient(socketPath, 10*time.Second)
	if err != nil {
		return nil, StartResult{Launched: true}, fmt.Errorf("daemon did not come up: %w", err)
	}
	return client, StartResult{State: StartStateStarted, Launched: true, Message: "daemon launched"}, nil
}

// StopDaemon asks a running daemon to stop driving the experience. A missing
// socket means there is nothing to stop.
func StopDaemon(socketPath string) (bool, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		return false, nil
	}
	defer client.Close()

	resp, err := client.Stop()
	if err != nil {
		return false, err
	}
	return resp.Stopped, nil
}
