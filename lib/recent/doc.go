// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package recent holds the process-wide "recent time" cache: a single
// atomically-updated nanosecond timestamp that hot paths read instead
// of querying a clock.
//
// The cache starts at zero, which readers interpret as "no value has
// been published yet". An upkeep loop (see lib/upkeep) owns the cache
// while it runs and overwrites it with a fresh reading on every tick.
// [Cache.Claim] and [Cache.Release] keep a second upkeep loop from
// writing to the same cache concurrently.
//
// Most code uses the process-wide cache returned by [Global]. Tests
// that need isolation construct their own [Cache] and pass it
// explicitly.
package recent
