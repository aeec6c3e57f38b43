// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recent

import "sync/atomic"

// Cache is an atomically readable and writable nanosecond timestamp.
// The zero value is an unset cache, ready for use.
type Cache struct {
	nanos atomic.Uint64

	// owned is set while an upkeep loop is publishing into this cache.
	owned atomic.Bool
}

var global Cache

// Global returns the process-wide cache read by instant.Recent.
func Global() *Cache { return &global }

// Load returns the most recently published value, or 0 if nothing has
// been published.
func (c *Cache) Load() uint64 { return c.nanos.Load() }

// Store publishes nanos as the recent time.
func (c *Cache) Store(nanos uint64) { c.nanos.Store(nanos) }

// Reset returns the cache to the unset state. Intended for tests that
// exercise the global cache and must leave it as they found it.
func (c *Cache) Reset() { c.nanos.Store(0) }

// Claim marks the cache as owned by a writer. Returns false if another
// writer already holds it.
func (c *Cache) Claim() bool { return c.owned.CompareAndSwap(false, true) }

// Release gives up a claim taken with Claim. The published value is
// left in place so readers keep seeing the last known time.
func (c *Cache) Release() { c.owned.Store(false) }
