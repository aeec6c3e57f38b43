// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clocksource

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
)

// NTPQueryFunc performs one NTP exchange. Matches ntp.QueryWithOptions.
type NTPQueryFunc func(server string, options ntp.QueryOptions) (*ntp.Response, error)

// NTPConfig configures an NTPSource.
type NTPConfig struct {
	// Base is the source being corrected. Required.
	Base Source

	// Server is the NTP server address, e.g. "pool.ntp.org". Required.
	Server string

	// Timeout bounds a single query. Zero uses the library default.
	Timeout time.Duration

	// Query replaces the network exchange. Nil uses ntp.QueryWithOptions
	// followed by response validation.
	Query NTPQueryFunc

	// Logger receives sync results. Nil discards them.
	Logger *slog.Logger
}

// NTPSource corrects a base Source by the offset most recently measured
// against an NTP server. Until the first successful Sync the offset is
// zero and readings equal the base source.
type NTPSource struct {
	base    Source
	server  string
	timeout time.Duration
	query   NTPQueryFunc
	logger  *slog.Logger

	// offset is the signed correction in nanoseconds. Positive means
	// the base source is behind the server.
	offset atomic.Int64
}

// NewNTPSource validates config and returns an unsynchronized source.
func NewNTPSource(config NTPConfig) (*NTPSource, error) {
	if config.Base == nil {
		return nil, fmt.Errorf("clocksource: NTP source requires a base source")
	}
	if config.Server == "" {
		return nil, fmt.Errorf("clocksource: NTP source requires a server address")
	}
	query := config.Query
	if query == nil {
		query = queryAndValidate
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NTPSource{
		base:    config.Base,
		server:  config.Server,
		timeout: config.Timeout,
		query:   query,
		logger:  logger,
	}, nil
}

func queryAndValidate(server string, options ntp.QueryOptions) (*ntp.Response, error) {
	response, err := ntp.QueryWithOptions(server, options)
	if err != nil {
		return nil, err
	}
	if err := response.Validate(); err != nil {
		return nil, err
	}
	return response, nil
}

// Sync queries the server and replaces the stored offset. On failure
// the previous offset is kept.
func (s *NTPSource) Sync() error {
	response, err := s.query(s.server, ntp.QueryOptions{Timeout: s.timeout})
	if err != nil {
		s.logger.Warn("ntp sync failed", "server", s.server, "error", err)
		return fmt.Errorf("querying NTP server %s: %w", s.server, err)
	}
	s.offset.Store(int64(response.ClockOffset))
	s.logger.Debug("ntp sync",
		"server", s.server,
		"offset", response.ClockOffset,
		"rtt", response.RTT,
		"stratum", response.Stratum,
	)
	return nil
}

// Offset returns the correction currently applied to the base source.
func (s *NTPSource) Offset() time.Duration {
	return time.Duration(s.offset.Load())
}

// Now returns the base reading shifted by the measured offset.
func (s *NTPSource) Now() uint64 { return s.adjust(s.base.Now()) }

// Start returns the base measurement-start reading shifted by the offset.
func (s *NTPSource) Start() uint64 { return s.adjust(s.base.Start()) }

// End returns the base measurement-end reading shifted by the offset.
func (s *NTPSource) End() uint64 { return s.adjust(s.base.End()) }

// adjust applies the offset, clamping to [0, math.MaxUint64].
func (s *NTPSource) adjust(reading uint64) uint64 {
	offset := s.offset.Load()
	if offset >= 0 {
		if reading > math.MaxUint64-uint64(offset) {
			return math.MaxUint64
		}
		return reading + uint64(offset)
	}
	magnitude := uint64(-offset)
	if reading < magnitude {
		return 0
	}
	return reading - magnitude
}
