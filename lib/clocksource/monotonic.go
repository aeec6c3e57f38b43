// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clocksource

import "time"

var processStart = time.Now()

// monotonicFallback measures monotonic time through the reading that
// time.Now attaches to every time.Time.
func monotonicFallback() int64 {
	return int64(time.Since(processStart))
}
