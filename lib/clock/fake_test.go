// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeAdvance(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := Fake(start)

	if !fake.Now().Equal(start) {
		t.Errorf("initial time = %v, want %v", fake.Now(), start)
	}

	fake.Advance(90 * time.Second)
	if got, want := fake.Now(), start.Add(90*time.Second); !got.Equal(want) {
		t.Errorf("after Advance: %v, want %v", got, want)
	}

	fake.Set(start)
	if !fake.Now().Equal(start) {
		t.Errorf("after Set: %v, want %v", fake.Now(), start)
	}
}

func TestRealNowMoves(t *testing.T) {
	real := Real()
	first := real.Now()
	if real.Now().Before(first) {
		t.Error("real clock went backward")
	}
}
