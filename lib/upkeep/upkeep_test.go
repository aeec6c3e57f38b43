// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package upkeep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/monotime/lib/clock"
	"github.com/bureau-foundation/monotime/lib/instant"
	"github.com/bureau-foundation/monotime/lib/mock"
	"github.com/bureau-foundation/monotime/lib/recent"
	"github.com/bureau-foundation/monotime/lib/testutil"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const interval = time.Millisecond

// harness wires an upkeep loop to a private cache, a mock source, and a
// fake scheduler.
type harness struct {
	cache     *recent.Cache
	source    *mock.Mock
	scheduler *clock.FakeClock
	refreshed chan instant.Instant
}

func newHarness() *harness {
	return &harness{
		cache:     &recent.Cache{},
		source:    mock.New(nil),
		scheduler: clock.Fake(epoch),
		refreshed: make(chan instant.Instant, 16),
	}
}

func (h *harness) config() Config {
	return Config{
		Interval: interval,
		Source:   h.source,
		Cache:    h.cache,
		Clock:    h.scheduler,
		AfterRefresh: func(published instant.Instant) {
			h.refreshed <- published
		},
	}
}

func (h *harness) start(t *testing.T) *Handle {
	t.Helper()
	handle, err := Start(context.Background(), h.config())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(handle.Stop)
	return handle
}

func TestStartPublishesImmediately(t *testing.T) {
	h := newHarness()
	h.source.Increment(100)

	handle := h.start(t)
	if got := h.cache.Load(); got != 100 {
		t.Fatalf("cache after Start = %d, want 100", got)
	}
	if got := handle.Refreshes(); got != 1 {
		t.Fatalf("Refreshes() = %d, want 1", got)
	}
	if got := testutil.RequireReceive(t, h.refreshed, 5*time.Second, "initial publish"); got.Uint64() != 100 {
		t.Fatalf("initial publish = %v, want 100", got)
	}
}

func TestTickPublishesFreshReading(t *testing.T) {
	h := newHarness()
	h.start(t)
	testutil.RequireReceive(t, h.refreshed, 5*time.Second, "initial publish")

	h.source.Increment(1_500)
	h.scheduler.Advance(interval)
	if got := testutil.RequireReceive(t, h.refreshed, 5*time.Second, "first tick"); got.Uint64() != 1_500 {
		t.Fatalf("tick published %v, want 1500", got)
	}
	if got := h.cache.Load(); got != 1_500 {
		t.Fatalf("cache = %d, want 1500", got)
	}

	h.source.Increment(500)
	h.scheduler.Advance(interval)
	if got := testutil.RequireReceive(t, h.refreshed, 5*time.Second, "second tick"); got.Uint64() != 2_000 {
		t.Fatalf("tick published %v, want 2000", got)
	}
}

func TestSecondStartIsRejected(t *testing.T) {
	h := newHarness()
	first := h.start(t)

	if _, err := Start(context.Background(), h.config()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start error = %v, want ErrAlreadyRunning", err)
	}

	first.Stop()
	second, err := Start(context.Background(), h.config())
	if err != nil {
		t.Fatalf("Start after Stop: %v", err)
	}
	second.Stop()
}

func TestStopKeepsLastReading(t *testing.T) {
	h := newHarness()
	h.source.Increment(42)
	handle := h.start(t)

	handle.Stop()
	handle.Stop()

	if got := h.cache.Load(); got != 42 {
		t.Fatalf("cache after Stop = %d, want 42", got)
	}
	if got := h.scheduler.RunningTickers(); got != 0 {
		t.Fatalf("RunningTickers() after Stop = %d, want 0", got)
	}
}

func TestContextCancellationStopsLoop(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	handle, err := Start(ctx, h.config())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	cancel()
	testutil.RequireClosed(t, handle.Done(), 5*time.Second, "loop exit after cancel")

	if !h.cache.Claim() {
		t.Fatal("cache should be released after the loop exits")
	}
	h.cache.Release()
}

func TestStartValidation(t *testing.T) {
	h := newHarness()

	config := h.config()
	config.Interval = 0
	if _, err := Start(context.Background(), config); err == nil {
		t.Fatal("Start with zero interval should fail")
	}

	config = h.config()
	config.Source = nil
	if _, err := Start(context.Background(), config); err == nil {
		t.Fatal("Start without a source should fail")
	}

	if !h.cache.Claim() {
		t.Fatal("failed Start must not leave the cache claimed")
	}
	h.cache.Release()
}

func TestPublishedCacheOverridesContextMock(t *testing.T) {
	recent.Global().Reset()
	t.Cleanup(recent.Global().Reset)

	ctx, contextMock := mock.NewContext(context.Background())
	contextMock.Increment(7)
	if got := instant.Recent(ctx); got.Uint64() != 7 {
		t.Fatalf("Recent() before upkeep = %v, want 7", got)
	}

	h := newHarness()
	h.source.Increment(9_999)
	config := h.config()
	config.Cache = nil
	handle, err := Start(context.Background(), config)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer handle.Stop()

	contextMock.Increment(1)
	if got := instant.Recent(ctx); got.Uint64() != 9_999 {
		t.Fatalf("Recent() with upkeep running = %v, want 9999", got)
	}
}
