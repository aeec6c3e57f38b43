// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/time/rate"

	"github.com/bureau-foundation/monotime/lib/codec"
	"github.com/bureau-foundation/monotime/lib/config"
	"github.com/bureau-foundation/monotime/lib/instant"
)

// sample is one probe reading. Instants encode as decimal nanosecond
// strings in both JSON and CBOR.
type sample struct {
	Sequence int             `json:"sequence" cbor:"sequence"`
	Now      instant.Instant `json:"now"      cbor:"now"`
	Recent   instant.Instant `json:"recent"   cbor:"recent"`

	// Lag is how far the recent-time read trails the full read, in
	// nanoseconds. Zero when the cache is ahead or unpopulated.
	Lag time.Duration `json:"lag_ns" cbor:"lag_ns"`
}

// sampler pairs full clock reads with recent-time reads at a bounded
// rate.
type sampler struct {
	clock   *instant.Clock
	recent  func() instant.Instant
	limiter *rate.Limiter
}

// run takes count samples, writing each as it is taken. It returns the
// number written; on cancellation the error wraps ctx.Err().
func (s *sampler) run(ctx context.Context, count int, writer sampleWriter) (int, error) {
	for sequence := 0; sequence < count; sequence++ {
		if err := s.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return sequence, ctx.Err()
			}
			return sequence, fmt.Errorf("waiting for sample slot: %w", err)
		}
		now := s.clock.Now()
		recentRead := s.recent()
		lag := time.Duration(0)
		if !recentRead.IsZero() {
			lag = now.SaturatingDurationSince(recentRead)
		}
		if err := writer.write(sample{
			Sequence: sequence,
			Now:      now,
			Recent:   recentRead,
			Lag:      lag,
		}); err != nil {
			return sequence, fmt.Errorf("writing sample %d: %w", sequence, err)
		}
	}
	return count, nil
}

// resolveFormat maps the configured format to a concrete one. Auto is
// text on a terminal and JSON otherwise.
func resolveFormat(format string, terminal bool) (string, error) {
	switch format {
	case config.FormatAuto:
		if terminal {
			return config.FormatText, nil
		}
		return config.FormatJSON, nil
	case config.FormatText, config.FormatJSON, config.FormatCBOR:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want auto, text, json, or cbor)", format)
	}
}

// sampleWriter emits samples in one output format.
type sampleWriter interface {
	write(sample) error
}

func newSampleWriter(w io.Writer, format string) (sampleWriter, error) {
	switch format {
	case config.FormatText:
		return &textWriter{out: bufio.NewWriter(w)}, nil
	case config.FormatJSON:
		return jsonWriter{encoder: json.NewEncoder(w)}, nil
	case config.FormatCBOR:
		return cborWriter{encoder: codec.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("no writer for format %q", format)
	}
}

type textWriter struct {
	out *bufio.Writer
}

func (t *textWriter) write(s sample) error {
	fmt.Fprintf(t.out, "%4d  now=%s  recent=%s  lag=%s\n",
		s.Sequence, s.Now.Time().Format(time.RFC3339Nano), s.Recent, s.Lag)
	return t.out.Flush()
}

// jsonWriter emits newline-delimited JSON.
type jsonWriter struct {
	encoder *json.Encoder
}

func (j jsonWriter) write(s sample) error { return j.encoder.Encode(s) }

// cborWriter emits a CBOR sequence (RFC 8742), one item per sample.
type cborWriter struct {
	encoder *codec.Encoder
}

func (c cborWriter) write(s sample) error { return c.encoder.Encode(s) }
