// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package instant

import (
	"context"

	"github.com/bureau-foundation/monotime/lib/mock"
	"github.com/bureau-foundation/monotime/lib/recent"
)

// Recent returns the most recently published time. When the upkeep
// loop has not published anything yet, it returns the value of the mock
// active in ctx (or in the default slot when ctx carries none), and 0
// when no mock was ever created there.
func Recent(ctx context.Context) Instant {
	if nanos := recent.Global().Load(); nanos != 0 {
		return Instant{nanos: nanos}
	}
	return Instant{nanos: mockedRecent(ctx)}
}

// RecentFrom is Recent with explicit collaborators. A nil slot means no
// mock is active.
func RecentFrom(cache *recent.Cache, slot *mock.Slot) Instant {
	if nanos := cache.Load(); nanos != 0 {
		return Instant{nanos: nanos}
	}
	return Instant{nanos: slot.Recent()}
}

// mockedRecent is the cold half of Recent, paid only while the cache
// is unset.
//
//go:noinline
func mockedRecent(ctx context.Context) uint64 {
	if slot := mock.SlotFromContext(ctx); slot != nil {
		return slot.Recent()
	}
	return mock.DefaultSlot().Recent()
}
