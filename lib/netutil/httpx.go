// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP I/O helpers for the adapter's API calls.
//
// Response body reads are bounded at MaxResponseSize to prevent
// unbounded memory allocation from a misbehaving server. These helpers
// are for JSON API responses (service discovery, token exchange,
// conversation endpoints), not for streaming transfers.
package netutil

import "io"

// MaxResponseSize bounds JSON API response body reads: 16 MB. Vendor
// API responses are orders of magnitude smaller; the limit only exists
// so a pathological response cannot exhaust memory.
const MaxResponseSize int64 = 16 << 20

// ReadResponse reads a JSON API response body up to MaxResponseSize
// bytes. Use instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}
