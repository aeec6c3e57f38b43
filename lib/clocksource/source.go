// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clocksource

// Source produces raw nanosecond readings in reference time.
type Source interface {
	// Now returns the current time.
	Now() uint64

	// Start returns a reading suitable for the beginning of a
	// measurement. Implementations may take a different path than Now
	// to order the reading with respect to surrounding instructions.
	Start() uint64

	// End returns a reading suitable for the end of a measurement.
	End() uint64
}
