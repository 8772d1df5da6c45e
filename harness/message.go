// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package harness

// Message is the normalized conversational message exchanged between
// the harness and an adapter. Outbound messages originate from test
// scripts; inbound messages are produced fresh per received event and
// carry no persistent identity.
type Message struct {
	// Text is the plain message text. May be empty when the message
	// consists only of attachments.
	Text string `json:"messageText,omitempty"`

	// Buttons are ordered quick-reply or action buttons.
	Buttons []Button `json:"buttons,omitempty"`

	// Media are ordered media attachments.
	Media []Media `json:"media,omitempty"`

	// Cards are ordered structured cards assembled from rich content.
	Cards []Card `json:"cards,omitempty"`
}

// Button is a single actionable option. Payload holds the decoded
// action value when the source carried one: parsed JSON when the value
// was valid JSON, the raw string otherwise, nil when absent.
type Button struct {
	Text    string `json:"text"`
	Payload any    `json:"payload,omitempty"`
}

// Media is a single media attachment. MimeType is derived from the URI
// extension; adapters use a sentinel value when the lookup fails rather
// than guessing.
type Media struct {
	URI      string `json:"mediaUri"`
	MimeType string `json:"mimeType"`
}

// Card is a structured content card. Text is the headline, Subtext the
// secondary line, Content free-form body text.
type Card struct {
	Text    string   `json:"text,omitempty"`
	Subtext string   `json:"subtext,omitempty"`
	Content string   `json:"content,omitempty"`
	Buttons []Button `json:"buttons,omitempty"`
	Media   []Media  `json:"media,omitempty"`
}
