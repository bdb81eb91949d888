package config

const (
	defaultStateDir   = "~/.local/share/longtake"
	defaultLogDir     = "~/.local/share/longtake/logs"
	defaultSocketName = "longtaked.sock"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"

	defaultFrameIntervalMS          = 16
	defaultSettleDelayMS            = 50
	defaultShowUIDebounceMS         = 100
	defaultSeekTimeoutMS            = 500
	defaultNearEndWindowMS          = 120
	defaultLoopSpeedMultiplier      = 5.0
	defaultEarlyCompleteToleranceMS = 120

	defaultInputCooldownMS     = 1500
	defaultWheelThreshold      = 30.0
	defaultTouchThreshold      = 60.0
	defaultJournalRetain       = 5000
	defaultPreloadConcurrency  = 3
	defaultPreloadTimeoutMS    = 10000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Timing: Timing{
			FrameIntervalMS:          defaultFrameIntervalMS,
			SettleDelayMS:            defaultSettleDelayMS,
			ShowUIDebounceMS:         defaultShowUIDebounceMS,
			SeekTimeoutMS:            defaultSeekTimeoutMS,
			NearEndWindowMS:          defaultNearEndWindowMS,
			LoopSpeedMultiplier:      defaultLoopSpeedMultiplier,
			EarlyCompleteToleranceMS: defaultEarlyCompleteToleranceMS,
		},
		Input: Input{
			CooldownMS:     defaultInputCooldownMS,
			WheelThreshold: defaultWheelThreshold,
			TouchThreshold: defaultTouchThreshold,
		},
		Journal: Journal{
			Enabled: true,
			Retain:  defaultJournalRetain,
		},
		Preload: Preload{
			Enabled:     true,
			Concurrency: defaultPreloadConcurrency,
			TimeoutMS:   defaultPreloadTimeoutMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Watch: Watch{
			Enabled: false,
		},
	}
}
