// Package preload warms scene and bridge media ahead of first use.
//
// Warmup is strictly best-effort: a handle that is missing or slow gets
// logged and skipped, never surfaced as a failure. The engine's own readiness
// checks cover whatever the warmup did not reach.
package preload

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"longtake/internal/config"
	"longtake/internal/logging"
	"longtake/internal/scene"
	"longtake/internal/section"
)

// Summary reports what warmup accomplished.
type Summary struct {
	Warmed   int
	Missing  int
	TimedOut int
}

// Warm loads every scene and bridge clip the graph references, bounded by
// the configured concurrency and per-asset timeout.
func Warm(ctx context.Context, graph *section.Graph, lib scene.Library, cfg config.Preload, logger *slog.Logger) Summary {
	logger = logging.NewComponentLogger(logger, "preload")
	if !cfg.Enabled {
		return Summary{}
	}

	type asset struct {
		name   string
		player scene.Player
	}
	var assets []asset
	for _, s := range graph.Sections() {
		assets = append(assets, asset{name: "scene " + string(s), player: lib.Scene(string(s))})
	}
	seen := make(map[section.Clip]bool)
	for _, edge := range graph.Edges() {
		if seen[edge.Clip] {
			continue
		}
		seen[edge.Clip] = true
		assets = append(assets, asset{name: "clip " + string(edge.Clip), player: lib.Bridge(string(edge.Clip))})
	}

	var summary Summary
	results := make([]int, len(assets))

	group, ctx := errgroup.WithContext(ctx)
	if cfg.Concurrency > 0 {
		group.SetLimit(cfg.Concurrency)
	}
	for i, a := range assets {
		i, a := i, a
		group.Go(func() error {
			results[i] = warmOne(ctx, a.name, a.player, cfg.Timeout(), logger)
			return nil
		})
	}
	_ = group.Wait()

	for _, r := range results {
		switch r {
		case warmed:
			summary.Warmed++
		case missing:
			summary.Missing++
		case timedOut:
			summary.TimedOut++
		}
	}
	logger.Info("warmup finished",
		logging.Int("warmed", summary.Warmed),
		logging.Int("missing", summary.Missing),
		logging.Int("timed_out", summary.TimedOut))
	return summary
}

const (
	warmed = iota
	missing
	timedOut
)

func warmOne(ctx context.Context, name string, player scene.Player, timeout time.Duration, logger *slog.Logger) int {
	if player == nil {
		logger.Debug("handle missing", logging.String("asset", name))
		return missing
	}
	if player.ReadyState() >= scene.ReadyFutureData {
		return warmed
	}

	ready := make(chan struct{}, 1)
	sub := player.Subscribe(scene.EventCanPlay, func(scene.Event) {
		select {
		case ready <- struct{}{}:
		default:
		}
	})
	defer sub.Cancel()

	player.Load()
	if player.ReadyState() >= scene.ReadyFutureData {
		return warmed
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ready:
		return warmed
	case <-timer.C:
		logger.Warn("warmup timed out", logging.String("asset", name))
		return timedOut
	case <-ctx.Done():
		return timedOut
	}
}
