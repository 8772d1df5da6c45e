// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

// Package liveperson adapts the LivePerson asynchronous consumer
// messaging API to the harness's normalized message model.
//
// The package provides two core types. [Client] holds the HTTP
// transport, logger, clock, and the lazily fetched service directory
// that maps logical service names (sentinel, idp, asyncMessagingEnt)
// to account-specific domains. [Conversation] wraps a Client with the
// per-session state: a [TokenManager] owning the bearer and on-behalf
// credentials, the conversation identifier, and the current skill
// assignment reported by routing-change notifications.
//
// A Conversation moves through UNOPENED → OPENING → OPEN → CLOSING →
// CLOSED. Open batches a user-profile request with the conversation
// request and correlates the response by request id; Close sends a
// best-effort state update and always discards the credential caches
// afterward, so a process never resumes with another session's tokens.
// Nothing in this package is shared between Conversation instances —
// two concurrent conversations for the same account hold independent
// directories and token caches.
//
// Credentials live in mmap-backed secret buffers (lib/secret) and are
// never logged; log records carry expiry timestamps only. All API
// errors surface through a small taxonomy ([*DiscoveryError],
// [*AuthError], [*OpenError], [*LifecycleError],
// [*UnsupportedContentError]); none are retried here — retry policy
// belongs to the transport layer driving the adapter.
package liveperson
