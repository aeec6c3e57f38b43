// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package instant provides Instant, an 8-byte point in time measured in
// nanoseconds since 1970-01-01T00:00:00Z, and the reads that produce it.
//
// Arithmetic comes in three strengths. The checked forms
// ([Instant.CheckedAdd], [Instant.CheckedSub],
// [Instant.CheckedDurationSince]) report failure with a false second
// result. The saturating form ([Instant.SaturatingDurationSince]) clamps
// to zero. The plain forms ([Instant.Add], [Instant.Sub],
// [Instant.DurationSince], [Instant.Since]) panic; use them only where
// the operands are known to be in range. The plain forms are built on
// the checked ones.
//
// # Recent time
//
// [Recent] reads the process-wide cache published by the upkeep loop
// (lib/upkeep). Until the loop publishes its first value, Recent falls
// back to the mock active in the context (lib/mock), and to 0 when there
// is none. Once the cache is populated it wins over any mock: code that
// needs a mocked reading at that point must use a [Clock] built with
// [Mocked].
//
// The unsigned representation covers about 584 years from 1970.
// time.Duration is signed, so durations produced here saturate at
// math.MaxInt64 nanoseconds (about 292 years).
package instant
