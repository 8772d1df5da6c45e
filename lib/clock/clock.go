// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts wall-clock reads for testability. Production
// code injects Real(); tests inject Fake() and advance time explicitly.
//
// The adapter's only time dependency is credential-expiry arithmetic,
// so Clock carries just Now. Code that needs timers should extend the
// interface rather than reaching for the time package directly.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
