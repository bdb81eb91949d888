package testsupport

import (
	"path/filepath"
	"testing"

	"longtake/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ControlSocket = filepath.Join(base, "state", "longtaked.sock")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithGraphPath points the config at a graph file on disk.
func WithGraphPath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.GraphPath = path
	}
}

// WithJournalRetain overrides the journal retention cap.
func WithJournalRetain(retain int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Retain = retain
	}
}
