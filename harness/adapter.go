// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package harness

import "context"

// Adapter is a single conversation against a vendor messaging platform.
// One Adapter instance owns exactly one live conversation: Open before
// the first turn, Close after the last. Instances are not reusable
// after Close and share no state with each other.
//
// The harness's transport loop delivers every asynchronously received
// payload to Matches; payloads that belong to this conversation are
// then passed to OnInbound, which returns a normalized message or nil
// for payloads that carry no message content (consumer echoes, routing
// metadata).
type Adapter interface {
	// Open establishes the conversation. Calling Open on an adapter
	// that is not in its initial state is a caller error.
	Open(ctx context.Context) error

	// Send publishes one outbound message turn.
	Send(ctx context.Context, message Message) error

	// Matches reports whether a raw inbound payload belongs to this
	// adapter's conversation.
	Matches(raw []byte) bool

	// OnInbound translates a raw inbound payload into a normalized
	// message. Returns nil (with nil error) for payloads that are
	// filtered out or carry metadata only.
	OnInbound(raw []byte) (*Message, error)

	// Close tears the conversation down. Credential state held by the
	// adapter is discarded even when the close call itself fails.
	Close(ctx context.Context) error

	// ConversationID returns the server-issued conversation identifier,
	// empty before Open succeeds.
	ConversationID() string
}
