// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mock

import (
	"sync/atomic"
	"time"
)

// Nanoseconds is the set of amounts a Mock can be moved by.
type Nanoseconds interface {
	~uint64 | time.Duration
}

// ToNanoseconds normalizes an amount to a raw nanosecond count. A
// negative duration converts to its two's complement, so adding it to
// a register subtracts its magnitude.
func ToNanoseconds[N Nanoseconds](amount N) uint64 {
	return uint64(amount)
}

// register is the shared counter behind every clone of a Mock.
type register struct {
	nanos atomic.Uint64
}

// Mock is a controllable time source. The register wraps on overflow
// and underflow: a mock makes no monotonicity promise.
type Mock struct {
	offset *register
}

// New creates a mock reading 0 and makes it the active mock of slot.
// A nil slot creates a detached mock that no fast-path read observes.
func New(slot *Slot) *Mock {
	offset := &register{}
	if slot != nil {
		slot.active.Store(offset)
	}
	return &Mock{offset: offset}
}

// Clone returns a second handle to the same register.
func (m *Mock) Clone() *Mock {
	return &Mock{offset: m.offset}
}

// Increment moves the mock forward by nanos.
func (m *Mock) Increment(nanos uint64) {
	m.offset.nanos.Add(nanos)
}

// Decrement moves the mock backward by nanos.
func (m *Mock) Decrement(nanos uint64) {
	m.offset.nanos.Add(^(nanos - 1))
}

// IncrementDuration moves the mock forward by d.
func (m *Mock) IncrementDuration(d time.Duration) {
	m.Increment(ToNanoseconds(d))
}

// DecrementDuration moves the mock backward by d.
func (m *Mock) DecrementDuration(d time.Duration) {
	m.Decrement(ToNanoseconds(d))
}

// Value returns the current reading.
func (m *Mock) Value() uint64 {
	return m.offset.nanos.Load()
}

// Now returns the current reading.
func (m *Mock) Now() uint64 { return m.Value() }

// Start returns the current reading. A mock does not model time passing
// during a measurement.
func (m *Mock) Start() uint64 { return m.Value() }

// End returns the current reading.
func (m *Mock) End() uint64 { return m.Value() }
