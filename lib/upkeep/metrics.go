// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package upkeep

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bureau-foundation/monotime/lib/instant"
	"github.com/bureau-foundation/monotime/lib/recent"
)

type collector struct {
	cache  *recent.Cache
	handle *Handle

	recentNanos *prometheus.Desc
	refreshes   *prometheus.Desc
}

// NewCollector returns a Prometheus collector for cache. handle may be
// nil, in which case only the cache gauge is exported.
func NewCollector(cache *recent.Cache, handle *Handle) prometheus.Collector {
	return &collector{
		cache:  cache,
		handle: handle,
		recentNanos: prometheus.NewDesc(
			"monotime_recent_unix_nanoseconds",
			"Most recently published reference time, in nanoseconds since the Unix epoch. 0 until upkeep publishes.",
			nil, nil,
		),
		refreshes: prometheus.NewDesc(
			"monotime_upkeep_refreshes_total",
			"Readings published by the upkeep loop.",
			nil, nil,
		),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.recentNanos
	if c.handle != nil {
		ch <- c.refreshes
	}
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	published := instant.RecentFrom(c.cache, nil)
	ch <- prometheus.MustNewConstMetric(c.recentNanos, prometheus.GaugeValue, float64(published.Nanoseconds()))
	if c.handle != nil {
		ch <- prometheus.MustNewConstMetric(c.refreshes, prometheus.CounterValue, float64(c.handle.Refreshes()))
	}
}
