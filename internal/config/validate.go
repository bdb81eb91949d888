package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateInput(); err != nil {
		return err
	}
	if err := c.validateJournal(); err != nil {
		return err
	}
	if err := c.validatePreload(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must not be empty")
	}
	return nil
}

func (c *Config) validateTiming() error {
	if c.Timing.FrameIntervalMS <= 0 {
		return errors.New("timing.frame_interval_ms must be positive")
	}
	if c.Timing.SettleDelayMS < 0 {
		return errors.New("timing.settle_delay_ms must not be negative")
	}
	if c.Timing.ShowUIDebounceMS < 0 {
		return errors.New("timing.show_ui_debounce_ms must not be negative")
	}
	if c.Timing.SeekTimeoutMS <= 0 {
		return errors.New("timing.seek_timeout_ms must be positive")
	}
	if c.Timing.NearEndWindowMS < 0 {
		return errors.New("timing.near_end_window_ms must not be negative")
	}
	if c.Timing.LoopSpeedMultiplier < 1 {
		return fmt.Errorf("timing.loop_speed_multiplier must be at least 1, got %g", c.Timing.LoopSpeedMultiplier)
	}
	if c.Timing.EarlyCompleteToleranceMS < 0 {
		return errors.New("timing.early_complete_tolerance_ms must not be negative")
	}
	return nil
}

func (c *Config) validateInput() error {
	if c.Input.CooldownMS < 0 {
		return errors.New("input.cooldown_ms must not be negative")
	}
	if c.Input.WheelThreshold <= 0 {
		return errors.New("input.wheel_threshold must be positive")
	}
	if c.Input.TouchThreshold <= 0 {
		return errors.New("input.touch_threshold must be positive")
	}
	return nil
}

func (c *Config) validateJournal() error {
	if c.Journal.Enabled && c.Journal.Retain <= 0 {
		return errors.New("journal.retain must be positive when the journal is enabled")
	}
	return nil
}

func (c *Config) validatePreload() error {
	if !c.Preload.Enabled {
		return nil
	}
	if c.Preload.Concurrency <= 0 {
		return errors.New("preload.concurrency must be positive")
	}
	if c.Preload.TimeoutMS <= 0 {
		return errors.New("preload.timeout_ms must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
