// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package instant

import (
	"cmp"
	"math"
	"math/bits"
	"time"
)

// Instant is a point in time in reference time. The zero value is the
// epoch itself. Instants compare with == and [Instant.Compare].
type Instant struct {
	nanos uint64
}

// FromUnixNanos builds an Instant from a raw nanosecond count. No
// validation is performed.
func FromUnixNanos(nanos uint64) Instant {
	return Instant{nanos: nanos}
}

// DurationSince returns the time elapsed from earlier to t.
//
// Panics if earlier is after t. Use CheckedDurationSince or
// SaturatingDurationSince when the order is not guaranteed.
func (t Instant) DurationSince(earlier Instant) time.Duration {
	elapsed, ok := t.CheckedDurationSince(earlier)
	if !ok {
		panic("instant: supplied instant is later than self")
	}
	return elapsed
}

// Since is the instant-minus-instant form of DurationSince and panics
// under the same condition.
func (t Instant) Since(earlier Instant) time.Duration {
	return t.DurationSince(earlier)
}

// CheckedDurationSince returns the time elapsed from earlier to t, or
// false if earlier is after t.
func (t Instant) CheckedDurationSince(earlier Instant) (time.Duration, bool) {
	difference, borrow := bits.Sub64(t.nanos, earlier.nanos, 0)
	if borrow != 0 {
		return 0, false
	}
	return durationFromNanos(difference), true
}

// SaturatingDurationSince returns the time elapsed from earlier to t,
// or zero if earlier is after t.
func (t Instant) SaturatingDurationSince(earlier Instant) time.Duration {
	elapsed, _ := t.CheckedDurationSince(earlier)
	return elapsed
}

// CheckedAdd returns t+d, or false if the result is outside the range
// of Instant. A negative d moves backwards.
func (t Instant) CheckedAdd(d time.Duration) (Instant, bool) {
	if d < 0 {
		return t.subNanos(magnitude(d))
	}
	return t.addNanos(uint64(d))
}

// CheckedSub returns t-d, or false if the result is outside the range
// of Instant. A negative d moves forwards.
func (t Instant) CheckedSub(d time.Duration) (Instant, bool) {
	if d < 0 {
		return t.addNanos(magnitude(d))
	}
	return t.subNanos(uint64(d))
}

// Add returns t+d. Panics on overflow; see CheckedAdd.
func (t Instant) Add(d time.Duration) Instant {
	result, ok := t.CheckedAdd(d)
	if !ok {
		panic("instant: overflow when adding duration to instant")
	}
	return result
}

// Sub returns t-d. Panics on overflow; see CheckedSub.
func (t Instant) Sub(d time.Duration) Instant {
	result, ok := t.CheckedSub(d)
	if !ok {
		panic("instant: overflow when subtracting duration from instant")
	}
	return result
}

// AddAssign replaces *t with t+d. Panics on overflow.
func (t *Instant) AddAssign(d time.Duration) { *t = t.Add(d) }

// SubAssign replaces *t with t-d. Panics on overflow.
func (t *Instant) SubAssign(d time.Duration) { *t = t.Sub(d) }

// Compare returns -1, 0, or +1 as t is before, equal to, or after u.
func (t Instant) Compare(u Instant) int {
	return cmp.Compare(t.nanos, u.nanos)
}

// Before reports whether t is before u.
func (t Instant) Before(u Instant) bool { return t.nanos < u.nanos }

// After reports whether t is after u.
func (t Instant) After(u Instant) bool { return t.nanos > u.nanos }

// IsZero reports whether t is the epoch. In the recent-time cache this
// means "no reading yet".
func (t Instant) IsZero() bool { return t.nanos == 0 }

func (t Instant) addNanos(nanos uint64) (Instant, bool) {
	sum, carry := bits.Add64(t.nanos, nanos, 0)
	if carry != 0 {
		return Instant{}, false
	}
	return Instant{nanos: sum}, true
}

func (t Instant) subNanos(nanos uint64) (Instant, bool) {
	difference, borrow := bits.Sub64(t.nanos, nanos, 0)
	if borrow != 0 {
		return Instant{}, false
	}
	return Instant{nanos: difference}, true
}

// magnitude returns |d| for negative d, including math.MinInt64.
func magnitude(d time.Duration) uint64 {
	return uint64(-(d + 1)) + 1
}

// durationFromNanos saturates at the largest time.Duration.
func durationFromNanos(nanos uint64) time.Duration {
	if nanos > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(nanos)
}
