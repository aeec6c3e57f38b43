// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package instant

import (
	"time"

	"github.com/bureau-foundation/monotime/lib/clocksource"
	"github.com/bureau-foundation/monotime/lib/mock"
	"github.com/bureau-foundation/monotime/lib/recent"
)

// Clock turns raw readings from a clocksource.Source into Instants.
// Unlike Recent, a Clock always asks its source, so a mock-backed Clock
// stays in control even after the recent cache has been populated.
type Clock struct {
	source clocksource.Source
	mocked *mock.Mock
	cache  *recent.Cache
}

// NewClock returns a Clock reading source whose Recent method reads the
// process-wide cache.
func NewClock(source clocksource.Source) *Clock {
	clock := &Clock{source: source, cache: recent.Global()}
	if m, ok := source.(*mock.Mock); ok {
		clock.mocked = m
	}
	return clock
}

// Mocked returns a Clock driven by a fresh mock installed in slot,
// along with the mock. A nil slot keeps the mock out of every
// fast-path read.
func Mocked(slot *mock.Slot) (*Clock, *mock.Mock) {
	m := mock.New(slot)
	return NewClock(m), m
}

// Now reads the current time from the source.
func (c *Clock) Now() Instant { return Instant{nanos: c.source.Now()} }

// Start reads a measurement-start time from the source.
func (c *Clock) Start() Instant { return Instant{nanos: c.source.Start()} }

// End reads a measurement-end time from the source.
func (c *Clock) End() Instant { return Instant{nanos: c.source.End()} }

// Delta returns the time between a Start and an End reading, or zero
// if end precedes start.
func (c *Clock) Delta(start, end Instant) time.Duration {
	return end.SaturatingDurationSince(start)
}

// Recent returns the mock's value for a mock-backed Clock, and the
// cached recent time otherwise. Unlike the package-level Recent, it
// does not fall back to any slot.
func (c *Clock) Recent() Instant {
	if c.mocked != nil {
		return Instant{nanos: c.mocked.Value()}
	}
	return Instant{nanos: c.cache.Load()}
}
