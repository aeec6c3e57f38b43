// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clocksource defines the capability interface for clocks that
// produce raw nanosecond readings in reference time (nanoseconds since
// 1970-01-01T00:00:00Z), plus the implementations monotime ships:
//
//   - [System]: wall time anchored once at construction, advanced by
//     the monotonic counter. Cheap and never goes backwards.
//   - [NTPSource]: wraps another Source and corrects it by an offset
//     measured against an NTP server.
//
// A mock clock (lib/mock) also satisfies [Source], so tests can hand a
// deterministic source to anything that expects a real one.
package clocksource
