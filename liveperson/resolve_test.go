// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package liveperson

import (
	"context"
	"errors"
	"testing"

	"github.com/convobench/convobench/lib/clock"
)

func TestResolveDomain(t *testing.T) {
	t.Run("directory fetched once per account", func(t *testing.T) {
		platform := newFakePlatform(t)
		client := platform.newTestClient(clock.Real())
		ctx := context.Background()

		domain, err := client.resolveDomain(ctx, testAccountID, serviceSentinel)
		if err != nil {
			t.Fatalf("resolveDomain(sentinel): %v", err)
		}
		if domain != platform.domain() {
			t.Errorf("resolved domain = %q, want %q", domain, platform.domain())
		}

		// Every further service under the same account is served from
		// the cached directory.
		if _, err := client.resolveDomain(ctx, testAccountID, serviceIDP); err != nil {
			t.Fatalf("resolveDomain(idp): %v", err)
		}
		if _, err := client.resolveDomain(ctx, testAccountID, serviceAsyncMessaging); err != nil {
			t.Fatalf("resolveDomain(asyncMessagingEnt): %v", err)
		}

		directory, _, _, _, _ := platform.counts()
		if directory != 1 {
			t.Errorf("directory fetched %d times, want 1", directory)
		}
	})

	t.Run("unlisted service", func(t *testing.T) {
		platform := newFakePlatform(t)
		platform.omitMessaging = true
		client := platform.newTestClient(clock.Real())

		_, err := client.resolveDomain(context.Background(), testAccountID, serviceAsyncMessaging)
		var discoveryErr *DiscoveryError
		if !errors.As(err, &discoveryErr) {
			t.Fatalf("resolveDomain error = %v, want *DiscoveryError", err)
		}
		if !errors.Is(err, ErrServiceNotListed) {
			t.Errorf("error does not wrap ErrServiceNotListed: %v", err)
		}
		if discoveryErr.Service != serviceAsyncMessaging {
			t.Errorf("DiscoveryError.Service = %q, want %q", discoveryErr.Service, serviceAsyncMessaging)
		}
	})

	t.Run("fetch failure", func(t *testing.T) {
		platform := newFakePlatform(t)
		platform.failDirectory = true
		client := platform.newTestClient(clock.Real())

		_, err := client.resolveDomain(context.Background(), testAccountID, serviceSentinel)
		var discoveryErr *DiscoveryError
		if !errors.As(err, &discoveryErr) {
			t.Fatalf("resolveDomain error = %v, want *DiscoveryError", err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("DiscoveryError does not wrap *APIError: %v", err)
		}
		if apiErr.StatusCode != 500 {
			t.Errorf("wrapped status = %d, want 500", apiErr.StatusCode)
		}
	})

	t.Run("resolve all lists sorted mappings", func(t *testing.T) {
		platform := newFakePlatform(t)
		client := platform.newTestClient(clock.Real())

		entries, err := client.ResolveAll(context.Background(), testAccountID)
		if err != nil {
			t.Fatalf("ResolveAll: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("ResolveAll returned %d entries, want 3", len(entries))
		}
		wantOrder := []string{serviceAsyncMessaging, serviceIDP, serviceSentinel}
		for index, want := range wantOrder {
			if entries[index].Service != want {
				t.Errorf("entries[%d].Service = %q, want %q", index, entries[index].Service, want)
			}
			if entries[index].Domain != platform.domain() {
				t.Errorf("entries[%d].Domain = %q, want %q", index, entries[index].Domain, platform.domain())
			}
		}
	})

	t.Run("failed fetch is not cached", func(t *testing.T) {
		platform := newFakePlatform(t)
		platform.failDirectory = true
		client := platform.newTestClient(clock.Real())
		ctx := context.Background()

		if _, err := client.resolveDomain(ctx, testAccountID, serviceSentinel); err == nil {
			t.Fatal("resolveDomain succeeded against failing directory")
		}

		platform.mu.Lock()
		platform.failDirectory = false
		platform.mu.Unlock()

		if _, err := client.resolveDomain(ctx, testAccountID, serviceSentinel); err != nil {
			t.Fatalf("resolveDomain after recovery: %v", err)
		}
	})
}
