// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/monotime/lib/clock"
	"github.com/bureau-foundation/monotime/lib/clocksource"
	"github.com/bureau-foundation/monotime/lib/config"
)

// buildSource returns the configured clock source. For NTP it measures
// the offset once before returning and, when a sync interval is set,
// keeps re-measuring until ctx is done. A failed first sync is logged
// and the source starts uncorrected.
func buildSource(ctx context.Context, cfg config.SourceConfig, clk clock.Clock, logger *slog.Logger) (clocksource.Source, error) {
	return buildSourceWithQuery(ctx, cfg, clk, logger, nil)
}

func buildSourceWithQuery(ctx context.Context, cfg config.SourceConfig, clk clock.Clock, logger *slog.Logger, query clocksource.NTPQueryFunc) (clocksource.Source, error) {
	switch cfg.Kind {
	case config.SourceSystem:
		return clocksource.System(), nil
	case config.SourceNTP:
		source, err := clocksource.NewNTPSource(clocksource.NTPConfig{
			Base:    clocksource.System(),
			Server:  cfg.NTP.Server,
			Timeout: cfg.NTP.Timeout,
			Query:   query,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		if err := source.Sync(); err != nil {
			logger.Warn("initial NTP sync failed, starting uncorrected",
				"server", cfg.NTP.Server,
				"error", err,
			)
		}
		if cfg.NTP.SyncInterval > 0 {
			ticker := clk.NewTicker(cfg.NTP.SyncInterval)
			go resyncLoop(ctx, ticker, source)
		}
		return source, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// resyncLoop re-measures the NTP offset on every tick until ctx is
// done. A failed resync keeps the previous offset.
func resyncLoop(ctx context.Context, ticker *clock.Ticker, source *clocksource.NTPSource) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Sync logs its own failures.
			source.Sync()
		}
	}
}
