// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the wall-clock scheduling that background
// loops depend on, so tests can drive them deterministically.
//
// This is distinct from lib/clocksource: a clocksource produces the
// nanosecond readings that get published, while a Clock decides when a
// loop wakes up. The upkeep loop takes one of each.
//
// In production pass Real(). In tests pass Fake() and step it:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	handle, _ := upkeep.Start(ctx, upkeep.Config{Clock: fake, ...})
//	fake.WaitForTickers(1)           // loop has created its ticker
//	fake.Advance(time.Millisecond)   // fire exactly one tick
//
// WaitForTickers removes the race between a goroutine creating its
// ticker and the test advancing time.
package clock
