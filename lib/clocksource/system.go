// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clocksource

import "time"

// SystemSource anchors the wall clock once and advances it with the
// monotonic counter, so readings are in reference time but never jump
// when the wall clock is stepped.
type SystemSource struct {
	baseWall  uint64
	baseMono  int64
	monotonic func() int64
}

// System returns a Source backed by the operating system clocks.
func System() *SystemSource {
	return newSystem(monotonicCounter())
}

func newSystem(monotonic func() int64) *SystemSource {
	wall := time.Now().UnixNano()
	if wall < 0 {
		wall = 0
	}
	return &SystemSource{
		baseWall:  uint64(wall),
		baseMono:  monotonic(),
		monotonic: monotonic,
	}
}

// Now returns the anchored wall time plus monotonic time elapsed since
// the anchor.
func (s *SystemSource) Now() uint64 {
	elapsed := s.monotonic() - s.baseMono
	if elapsed < 0 {
		elapsed = 0
	}
	return s.baseWall + uint64(elapsed)
}

// Start is Now; the Go runtime does not expose serializing counter reads.
func (s *SystemSource) Start() uint64 { return s.Now() }

// End is Now.
func (s *SystemSource) End() uint64 { return s.Now() }
