package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"longtake/internal/config"
	"longtake/internal/engine"
	"longtake/internal/inputgate"
	"longtake/internal/journal"
	"longtake/internal/logging"
	"longtake/internal/scene/scripted"
	"longtake/internal/section"
	"longtake/internal/visibility"
)

// Daemon owns the running experience and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *journal.Store
	ctrl    *engine.Controller
	gate    *inputgate.Gateway
	vis     *visibility.Coordinator
	library *scripted.Library
	logPath string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	watcher *section.Watcher
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	Engine        engine.Snapshot
	Visibility    visibility.State
	Muted         bool
	JournalDBPath string
	JournalCount  int64
	LockFilePath  string
	GraphPath     string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *journal.Store, logger *slog.Logger, ctrl *engine.Controller, gate *inputgate.Gateway, vis *visibility.Coordinator, library *scripted.Library) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || ctrl == nil || gate == nil || vis == nil {
		return nil, errors.New("daemon requires config, store, logger, controller, gateway, and visibility")
	}

	lockPath := filepath.Join(cfg.Paths.StateDir, "longtaked.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		ctrl:     ctrl,
		gate:     gate,
		vis:      vis,
		library:  library,
		logPath:  filepath.Join(cfg.Paths.LogDir, logging.LogFileName),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and begins driving the experience.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another longtake daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if d.library != nil {
		// The starting scene autoplays; everything else starts on demand.
		if player := d.library.ScenePlayer(string(d.ctrl.Current())); player != nil {
			if err := player.Play(); err != nil {
				d.logger.Warn("starting scene playback failed", logging.Error(err))
			}
		}
	}
	d.startTicker()
	if err := d.startGraphWatcher(); err != nil {
		d.logger.Warn("graph watcher unavailable", logging.Error(err))
	}

	d.running.Store(true)
	d.logger.Info("longtake daemon started", logging.String("lock", d.lockPath))
	return nil
}

// startTicker advances the scripted library on wall-clock frames. A renderer
// process would replace this with its own media clock; headless, the ticker
// is what makes loops loop and bridges end.
func (d *Daemon) startTicker() {
	if d.library == nil {
		return
	}
	interval := d.cfg.Timing.FrameInterval()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-d.ctx.Done():
				return
			case now := <-ticker.C:
				d.library.Tick(now.Sub(last))
				last = now
			}
		}
	}()
}

func (d *Daemon) startGraphWatcher() error {
	if !d.cfg.Watch.Enabled || strings.TrimSpace(d.cfg.Paths.GraphPath) == "" {
		return nil
	}
	watcher, err := section.NewWatcher(d.cfg.Paths.GraphPath)
	if err != nil {
		return err
	}
	d.watcher = watcher
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-d.ctx.Done():
				return
			case path, ok := <-watcher.Events:
				if !ok {
					return
				}
				d.reloadGraph(path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				d.logger.Warn("graph watch error", logging.Error(err))
			}
		}
	}()
	return nil
}

func (d *Daemon) reloadGraph(path string) {
	graph, err := section.LoadFile(path)
	if err != nil {
		d.logger.Warn("graph reload rejected", logging.String("path", path), logging.Error(err))
		return
	}
	if !d.ctrl.ReplaceGraph(graph) {
		d.logger.Info("graph reload deferred, transition in flight", logging.String("path", path))
		return
	}
	d.gate.SetGraph(graph)
	d.logger.Info("graph reloaded", logging.String("path", path))
}

// Stop halts background work and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.watcher != nil {
		_ = d.watcher.Close()
		d.watcher = nil
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("longtake daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	d.ctrl.Close()
	d.vis.Close()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Navigate issues a navigation request on behalf of an IPC caller.
func (d *Daemon) Navigate(intent string, target string) (engine.Snapshot, error) {
	var err error
	switch strings.ToLower(strings.TrimSpace(intent)) {
	case "forward":
		err = d.ctrl.RequestForward("ipc")
	case "back":
		err = d.ctrl.RequestBack("ipc")
	case "direct":
		parsed, ok := section.Parse(target)
		if !ok {
			return d.ctrl.Snapshot(), fmt.Errorf("unknown section %q", target)
		}
		err = d.ctrl.RequestDirect(parsed, "ipc")
	default:
		return d.ctrl.Snapshot(), fmt.Errorf("unknown intent %q", intent)
	}
	return d.ctrl.Snapshot(), err
}

// Wheel feeds a wheel gesture through the input gateway.
func (d *Daemon) Wheel(delta float64) (inputgate.Verdict, engine.Snapshot) {
	verdict := d.gate.Wheel(delta)
	return verdict, d.ctrl.Snapshot()
}

// Touch feeds a completed swipe through the input gateway.
func (d *Daemon) Touch(distance float64) (inputgate.Verdict, engine.Snapshot) {
	verdict := d.gate.Touch(distance)
	return verdict, d.ctrl.Snapshot()
}

// JournalList returns recent committed transitions.
func (d *Daemon) JournalList(ctx context.Context, limit int) ([]journal.Entry, error) {
	if d.store == nil {
		return nil, errors.New("journal store unavailable")
	}
	return d.store.Recent(ctx, limit)
}

// Muted reads the persisted sound preference.
func (d *Daemon) Muted(ctx context.Context) (bool, error) {
	return d.store.Muted(ctx)
}

// SetMuted persists the sound preference.
func (d *Daemon) SetMuted(ctx context.Context, muted bool) error {
	return d.store.SetMuted(ctx, muted)
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		Engine:        d.ctrl.Snapshot(),
		Visibility:    d.vis.Current(),
		JournalDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
		GraphPath:     d.cfg.Paths.GraphPath,
	}
	if muted, err := d.store.Muted(ctx); err == nil {
		status.Muted = muted
	}
	if count, err := d.store.Count(ctx); err == nil {
		status.JournalCount = count
	}
	return status
}
