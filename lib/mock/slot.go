// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mock

import (
	"context"
	"sync/atomic"
)

// Slot holds the active mock register of one execution context.
type Slot struct {
	active atomic.Pointer[register]
}

// NewSlot returns a slot whose active register is a private one
// reading 0.
func NewSlot() *Slot {
	slot := &Slot{}
	slot.active.Store(&register{})
	return slot
}

var defaultSlot = NewSlot()

// DefaultSlot returns the process-wide slot used when a context
// carries none. It is shared by every goroutine: a mock installed here
// is seen by all callers whose context has no slot of its own.
func DefaultSlot() *Slot { return defaultSlot }

// Install creates a mock in the process-wide slot. It is not isolated
// per context or goroutine; tests that run in parallel should use
// NewContext instead.
func Install() *Mock { return New(defaultSlot) }

// Recent returns the value of the active register, or 0 for a nil
// slot. Kept out of line so the fast path that calls it stays small.
//
//go:noinline
func (s *Slot) Recent() uint64 {
	if s == nil {
		return 0
	}
	active := s.active.Load()
	if active == nil {
		return 0
	}
	return active.nanos.Load()
}

type slotKey struct{}

// WithSlot returns a copy of ctx carrying slot.
func WithSlot(ctx context.Context, slot *Slot) context.Context {
	return context.WithValue(ctx, slotKey{}, slot)
}

// SlotFromContext returns the slot carried by ctx, or nil.
func SlotFromContext(ctx context.Context) *Slot {
	if ctx == nil {
		return nil
	}
	slot, _ := ctx.Value(slotKey{}).(*Slot)
	return slot
}

// NewContext creates a private slot, installs a fresh mock in it, and
// returns a context carrying the slot.
func NewContext(ctx context.Context) (context.Context, *Mock) {
	slot := NewSlot()
	return WithSlot(ctx, slot), New(slot)
}
