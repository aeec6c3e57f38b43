// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the "select with a
// wall-clock safety valve" pattern so tests of background loops never
// hang. They are the only place in the test suite that waits on real
// time; everything else is driven by lib/clock's FakeClock or by a mock
// clocksource.
//
// Helpers call t.Fatalf on failure rather than returning errors.
package testutil
