package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewAtWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewAt("info", "console", dir)
	if err != nil {
		t.Fatalf("NewAt failed: %v", err)
	}
	logger.Info("bridge started", String(FieldSection, "hero"), String(FieldTarget, "contact"))

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "bridge started") {
		t.Errorf("log line missing message: %q", line)
	}
	if !strings.Contains(line, "section=hero") || !strings.Contains(line, "target=contact") {
		t.Errorf("log line missing structured fields: %q", line)
	}
}

func TestConsoleHandlerPromotesComponent(t *testing.T) {
	var buf strings.Builder
	lvl := new(slog.LevelVar)
	handler := &consoleHandler{writer: writerAdapter{&buf}, level: lvl}
	logger := slog.New(handler).With(String(FieldComponent, "engine"))

	logger.Info("loop wait started", String(FieldSection, "hero"))

	line := buf.String()
	if !strings.Contains(line, " engine loop wait started") {
		t.Errorf("component not promoted into prefix: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Errorf("component should not render as key=value: %q", line)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic and must report disabled at every level.
	logger.Error("ignored")
	if logger.Enabled(nil, slog.LevelError) {
		t.Fatal("nop logger should be disabled")
	}
}

type writerAdapter struct{ b *strings.Builder }

func (w writerAdapter) Write(p []byte) (int, error) { return w.b.Write(p) }
