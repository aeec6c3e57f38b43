// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package upkeep runs the background loop that keeps the recent-time
// cache (lib/recent) fresh.
//
// Start publishes one reading before returning, so instant.Recent is
// non-zero as soon as Start succeeds, then publishes a new reading on
// every tick of the configured interval. Only one loop may own a cache
// at a time; a second Start against the same cache fails with
// [ErrAlreadyRunning]. Stop the loop with [Handle.Stop] or by cancelling
// the context passed to Start.
//
// [NewCollector] exports the cache and the loop's refresh count as
// Prometheus metrics.
package upkeep
