// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package instant

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"
)

const nanosPerSecond = uint64(time.Second)

// FromTime converts t. Returns false for times before the epoch or too
// far after it to represent.
func FromTime(t time.Time) (Instant, bool) {
	return fromSeconds(t.Unix(), int64(t.Nanosecond()))
}

// FromTimestamp converts a wire timestamp. Returns false for nil,
// malformed, or pre-epoch timestamps.
func FromTimestamp(timestamp *timestamppb.Timestamp) (Instant, bool) {
	if timestamp == nil || timestamp.CheckValid() != nil {
		return Instant{}, false
	}
	return fromSeconds(timestamp.GetSeconds(), int64(timestamp.GetNanos()))
}

func fromSeconds(seconds, nanos int64) (Instant, bool) {
	if seconds < 0 || nanos < 0 || uint64(nanos) >= nanosPerSecond {
		return Instant{}, false
	}
	high, low := bits.Mul64(uint64(seconds), nanosPerSecond)
	if high != 0 {
		return Instant{}, false
	}
	return Instant{nanos: low}.addNanos(uint64(nanos))
}

// UnixDuration returns the time elapsed since the epoch, saturating at
// the largest time.Duration.
func (t Instant) UnixDuration() time.Duration {
	return durationFromNanos(t.nanos)
}

// Uint64 returns the raw representation. The meaning of this value is
// not part of the package's compatibility promise.
func (t Instant) Uint64() uint64 { return t.nanos }

// Nanoseconds returns the nanoseconds since the epoch, for metrics
// exporters that record plain counts.
func (t Instant) Nanoseconds() uint64 { return t.nanos }

// Time converts t to a UTC time.Time.
func (t Instant) Time() time.Time {
	return time.Unix(int64(t.nanos/nanosPerSecond), int64(t.nanos%nanosPerSecond)).UTC()
}

// Timestamp converts t to a protobuf wire timestamp. Seconds clamp to
// math.MaxInt64 and nanoseconds to math.MaxInt32 instead of wrapping.
func (t Instant) Timestamp() *timestamppb.Timestamp {
	seconds := t.nanos / nanosPerSecond
	if seconds > math.MaxInt64 {
		seconds = math.MaxInt64
	}
	nanos := t.nanos % nanosPerSecond
	if nanos > math.MaxInt32 {
		nanos = math.MaxInt32
	}
	return &timestamppb.Timestamp{
		Seconds: int64(seconds),
		Nanos:   int32(nanos),
	}
}

// String formats t as its decimal nanosecond count.
func (t Instant) String() string {
	return strconv.FormatUint(t.nanos, 10)
}

// MarshalText encodes t as its decimal nanosecond count, so an Instant
// is a string in JSON and a text string in CBOR.
func (t Instant) MarshalText() ([]byte, error) {
	return strconv.AppendUint(nil, t.nanos, 10), nil
}

// UnmarshalText parses the form produced by MarshalText.
func (t *Instant) UnmarshalText(text []byte) error {
	nanos, err := strconv.ParseUint(string(text), 10, 64)
	if err != nil {
		return fmt.Errorf("instant: parsing %q: %w", text, err)
	}
	t.nanos = nanos
	return nil
}
