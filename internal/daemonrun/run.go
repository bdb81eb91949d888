// Package daemonrun boots the longtake daemon process: logging, storage,
// the engine stack, the IPC server, and signal-driven shutdown.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"longtake/internal/config"
	"longtake/internal/daemon"
	"longtake/internal/engine"
	"longtake/internal/inputgate"
	"longtake/internal/ipc"
	"longtake/internal/journal"
	"longtake/internal/logging"
	"longtake/internal/preload"
	"longtake/internal/scene/scripted"
	"longtake/internal/sched"
	"longtake/internal/section"
	"longtake/internal/visibility"
)

// Stand-in media lengths for the headless scripted library. A renderer
// supplies real durations when one registers its handles.
const (
	headlessSceneDuration  = 12 * time.Second
	headlessBridgeDuration = 3 * time.Second
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the longtake daemon runtime loop and blocks until a signal or
// context cancellation.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.NewAt(level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.StateDir, "longtaked.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	graph, err := section.Load(cfg.Paths.GraphPath)
	if err != nil {
		logger.Error("load section graph", logging.Error(err))
		return err
	}

	store, err := journal.Open(cfg)
	if err != nil {
		logger.Error("open journal store", logging.Error(err))
		return err
	}
	defer store.Close()

	library := buildLibrary(graph)
	ctrl := engine.New(graph, library, sched.NewReal(cfg.Timing.FrameInterval()), cfg.Timing, logger,
		engine.WithRecorder(journal.NewRecorder(store, logger)))
	vis := visibility.New(graph, sched.NewReal(cfg.Timing.FrameInterval()), cfg.Timing.ShowUIDebounce(), logger)
	ctrl.Notify(vis.Observe)
	gate := inputgate.New(ctrl, graph, inputgate.Options{
		WheelThreshold: cfg.Input.WheelThreshold,
		TouchThreshold: cfg.Input.TouchThreshold,
		Cooldown:       cfg.Input.Cooldown(),
	}, logger)

	d, err := daemon.New(cfg, store, logger, ctrl, gate, vis, library)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.Paths.ControlSocket, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed", logging.Error(err))
	}

	go preload.Warm(signalCtx, graph, library, cfg.Preload, logger)

	<-signalCtx.Done()
	logger.Info("longtake daemon shutting down")
	return nil
}

func buildLibrary(graph *section.Graph) *scripted.Library {
	library := scripted.NewLibrary()
	for _, s := range graph.Sections() {
		if graph.Info(s).Looping {
			library.AddScene(string(s), scripted.NewLooping(headlessSceneDuration))
		} else {
			library.AddScene(string(s), scripted.NewPlayer(headlessSceneDuration))
		}
	}
	for _, edge := range graph.Edges() {
		if library.BridgePlayer(string(edge.Clip)) == nil {
			library.AddBridge(string(edge.Clip), scripted.NewPlayer(headlessBridgeDuration))
		}
	}
	return library
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
