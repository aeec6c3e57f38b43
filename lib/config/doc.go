// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for monotime
// binaries.
//
// Configuration comes from a single file named by either the
// MONOTIME_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no per-value environment
// override. A binary run without any file uses [Default].
//
// The file may carry development and production sections that override
// base values when [Config].Environment matches. Production defaults
// refresh the recent-time cache less aggressively.
//
// ${VAR} and ${VAR:-default} patterns are expanded in the NTP server
// and metrics listen address after loading.
//
// This package depends on no other monotime packages.
package config
