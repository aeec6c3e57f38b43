// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package clocksource

func monotonicCounter() func() int64 { return monotonicFallback }
