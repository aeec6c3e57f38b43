// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package clocksource

import "golang.org/x/sys/unix"

// monotonicCounter picks the counter once. CLOCK_MONOTONIC is read
// directly because the runtime's own monotonic reading is only
// reachable through time.Now, which also reads the wall clock. If the
// first read fails the fallback counter is used for the life of the
// source, since the two counters have different origins.
func monotonicCounter() func() int64 {
	if _, err := readClockMonotonic(); err != nil {
		return monotonicFallback
	}
	return clockMonotonic
}

func readClockMonotonic() (int64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0, err
	}
	return ts.Nano(), nil
}

// clockMonotonic panics if CLOCK_MONOTONIC stops working after it was
// chosen: switching counters would move readings backwards.
func clockMonotonic() int64 {
	nanos, err := readClockMonotonic()
	if err != nil {
		panic("clocksource: reading CLOCK_MONOTONIC: " + err.Error())
	}
	return nanos
}
