// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers: reporting an
// error from run() before the structured logger exists, and exiting.
package process
