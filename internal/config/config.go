package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and socket configuration.
type Paths struct {
	StateDir      string `toml:"state_dir"`
	LogDir        string `toml:"log_dir"`
	GraphPath     string `toml:"graph_path"`
	ControlSocket string `toml:"control_socket"`
}

// Timing contains the tunable delays that sequence media side effects.
// These values were tuned empirically against real playback hardware; they are
// knobs, not semantic guarantees.
type Timing struct {
	FrameIntervalMS          int     `toml:"frame_interval_ms"`
	SettleDelayMS            int     `toml:"settle_delay_ms"`
	ShowUIDebounceMS         int     `toml:"show_ui_debounce_ms"`
	SeekTimeoutMS            int     `toml:"seek_timeout_ms"`
	NearEndWindowMS          int     `toml:"near_end_window_ms"`
	LoopSpeedMultiplier      float64 `toml:"loop_speed_multiplier"`
	EarlyCompleteToleranceMS int     `toml:"early_complete_tolerance_ms"`
}

// Input contains gesture translation settings.
type Input struct {
	CooldownMS     int     `toml:"cooldown_ms"`
	WheelThreshold float64 `toml:"wheel_threshold"`
	TouchThreshold float64 `toml:"touch_threshold"`
}

// Journal contains settings for the transition journal database.
type Journal struct {
	Enabled bool `toml:"enabled"`
	// Retain caps how many journal rows are kept; older rows are pruned.
	Retain int `toml:"retain"`
}

// Preload contains media warmup settings.
type Preload struct {
	Enabled     bool `toml:"enabled"`
	Concurrency int  `toml:"concurrency"`
	TimeoutMS   int  `toml:"timeout_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Watch contains development-time graph hot-reload settings.
type Watch struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for the longtake engine.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Timing  Timing  `toml:"timing"`
	Input   Input   `toml:"input"`
	Journal Journal `toml:"journal"`
	Preload Preload `toml:"preload"`
	Logging Logging `toml:"logging"`
	Watch   Watch   `toml:"watch"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/longtake/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is the
// resolved path, the third reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("longtake.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the state and log directories if missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.GraphPath) != "" {
		if c.Paths.GraphPath, err = expandPath(c.Paths.GraphPath); err != nil {
			return fmt.Errorf("paths.graph_path: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.ControlSocket) == "" {
		c.Paths.ControlSocket = filepath.Join(c.Paths.StateDir, defaultSocketName)
	} else if c.Paths.ControlSocket, err = expandPath(c.Paths.ControlSocket); err != nil {
		return fmt.Errorf("paths.control_socket: %w", err)
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}

// Duration accessors convert millisecond knobs into time.Duration once so
// call sites never multiply by time.Millisecond themselves.

func (t Timing) FrameInterval() time.Duration  { return time.Duration(t.FrameIntervalMS) * time.Millisecond }
func (t Timing) SettleDelay() time.Duration    { return time.Duration(t.SettleDelayMS) * time.Millisecond }
func (t Timing) ShowUIDebounce() time.Duration { return time.Duration(t.ShowUIDebounceMS) * time.Millisecond }
func (t Timing) SeekTimeout() time.Duration    { return time.Duration(t.SeekTimeoutMS) * time.Millisecond }
func (t Timing) NearEndWindow() time.Duration  { return time.Duration(t.NearEndWindowMS) * time.Millisecond }

func (t Timing) EarlyCompleteTolerance() time.Duration {
	return time.Duration(t.EarlyCompleteToleranceMS) * time.Millisecond
}

func (i Input) Cooldown() time.Duration { return time.Duration(i.CooldownMS) * time.Millisecond }

func (p Preload) Timeout() time.Duration { return time.Duration(p.TimeoutMS) * time.Millisecond }
