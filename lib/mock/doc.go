// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mock provides a caller-driven clock for tests.
//
// A [Mock] is a handle to a shared nanosecond register. Time moves only
// when the test calls [Mock.Increment] or [Mock.Decrement]; every
// reading ([Mock.Now], [Mock.Start], [Mock.End], [Mock.Value]) returns
// the register exactly. Clones share the register, so components handed
// different clones observe one timeline.
//
// # Slots
//
// Go has no thread-local storage, so the "active mock" of an execution
// context lives in an explicit [Slot]. Creating a mock with [New]
// installs its register in the slot, replacing whatever was active
// before; there is no way to deactivate a mock other than installing
// another. A slot travels with a context.Context:
//
//	ctx, m := mock.NewContext(context.Background())
//	m.IncrementDuration(5 * time.Second)
//	instant.Recent(ctx) // 5s after the epoch, while the recent cache is unset
//
// Tests that run in parallel each get their own slot and never see one
// another's mocks. [Install] and [DefaultSlot] provide a process-wide
// slot for callers that want ambient behavior and accept that parallel
// tests using it will interfere.
package mock
