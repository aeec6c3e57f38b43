// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR encoding configuration.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items, so
// the same samples always produce the same bytes. Types implementing
// encoding.TextMarshaler, such as instant.Instant, are written as CBOR
// text strings, matching their JSON form.
//
//	encoder := codec.NewEncoder(os.Stdout)
//	err := encoder.Encode(sample)
//
// Struct fields use `json` tags; fxamacker/cbor reads them when no
// `cbor` tag is present, so one tag drives both output formats.
package codec
