// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package upkeep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/monotime/lib/clock"
	"github.com/bureau-foundation/monotime/lib/clocksource"
	"github.com/bureau-foundation/monotime/lib/instant"
	"github.com/bureau-foundation/monotime/lib/recent"
)

// ErrAlreadyRunning is returned by Start when another loop owns the cache.
var ErrAlreadyRunning = errors.New("upkeep: recent-time cache already has a running upkeep loop")

// Config configures an upkeep loop.
type Config struct {
	// Interval between refreshes. Must be positive.
	Interval time.Duration

	// Source provides the readings to publish. Required.
	Source clocksource.Source

	// Cache receives the readings. Nil means recent.Global().
	Cache *recent.Cache

	// Clock schedules the refreshes. Nil means clock.Real().
	Clock clock.Clock

	// Logger receives lifecycle events. Nil discards them.
	Logger *slog.Logger

	// AfterRefresh, if set, is called after each publish. The first
	// call happens inside Start; later calls run on the loop goroutine.
	AfterRefresh func(published instant.Instant)
}

// Handle controls a running upkeep loop.
type Handle struct {
	cache        *recent.Cache
	source       clocksource.Source
	ticker       *clock.Ticker
	logger       *slog.Logger
	afterRefresh func(instant.Instant)

	cancel    context.CancelFunc
	done      chan struct{}
	stopOnce  sync.Once
	refreshes atomic.Uint64
}

// Start claims the cache, publishes an initial reading, and launches
// the refresh loop.
func Start(ctx context.Context, config Config) (*Handle, error) {
	if config.Interval <= 0 {
		return nil, fmt.Errorf("upkeep: interval must be positive, got %v", config.Interval)
	}
	if config.Source == nil {
		return nil, fmt.Errorf("upkeep: a clock source is required")
	}
	cache := config.Cache
	if cache == nil {
		cache = recent.Global()
	}
	scheduler := config.Clock
	if scheduler == nil {
		scheduler = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if !cache.Claim() {
		return nil, ErrAlreadyRunning
	}

	loopContext, cancel := context.WithCancel(ctx)
	handle := &Handle{
		cache:        cache,
		source:       config.Source,
		ticker:       scheduler.NewTicker(config.Interval),
		logger:       logger,
		afterRefresh: config.AfterRefresh,
		cancel:       cancel,
		done:         make(chan struct{}),
	}

	handle.refresh()
	logger.Info("upkeep started",
		"interval", config.Interval,
		"recent", instant.FromUnixNanos(cache.Load()),
	)

	go handle.run(loopContext)
	return handle, nil
}

func (h *Handle) run(ctx context.Context) {
	defer close(h.done)
	defer h.cache.Release()
	defer h.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("upkeep stopped", "refreshes", h.refreshes.Load())
			return
		case <-h.ticker.C:
			h.refresh()
		}
	}
}

func (h *Handle) refresh() {
	published := instant.FromUnixNanos(h.source.Now())
	h.cache.Store(published.Uint64())
	h.refreshes.Add(1)
	if h.afterRefresh != nil {
		h.afterRefresh(published)
	}
}

// Refreshes returns the number of readings published so far.
func (h *Handle) Refreshes() uint64 { return h.refreshes.Load() }

// Done is closed once the loop has exited and released the cache.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Stop ends the loop and waits for it to release the cache. The last
// published reading stays in the cache. Safe to call more than once.
func (h *Handle) Stop() {
	h.stopOnce.Do(h.cancel)
	<-h.done
}
