// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package liveperson

import (
	"encoding/json"
	"math/rand/v2"
	"strings"

	"github.com/convobench/convobench/harness"
)

// requestIDLength is the digit count of generated request ids and
// session nonces.
const requestIDLength = 10

// Client capability names announced through the Client-Properties
// header.
const (
	featureAutoMessages = "AUTO_MESSAGES"
	featureQuickReplies = "QUICK_REPLIES"
	featureRichContent  = "RICH_CONTENT"
	featureMultiDialog  = "MULTI_DIALOG"
)

// randomNumericID returns a random string of n decimal digits, used
// for request ids and session nonces. Uniqueness matters only within
// one batched call, where responses are correlated by this id.
func randomNumericID(n int) string {
	var builder strings.Builder
	builder.Grow(n)
	for range n {
		builder.WriteByte(byte('0' + rand.IntN(10)))
	}
	return builder.String()
}

// resolveOutboundText reduces a harness message to the single plain
// string the publish envelope carries. Buttons win over text: a
// button press sends the button's text, or — when the button carries a
// payload — the publishText action inside it, falling back to the raw
// payload value. Outbound media has no protocol expression and is
// rejected.
func resolveOutboundText(message harness.Message) (string, error) {
	if len(message.Buttons) > 0 {
		button := message.Buttons[0]
		if button.Payload != nil {
			return resolvePayloadText(button.Payload), nil
		}
		if button.Text != "" {
			return button.Text, nil
		}
	}

	if len(message.Media) > 0 {
		return "", &UnsupportedContentError{Reason: "outbound media attachments cannot be sent"}
	}

	return message.Text, nil
}

// buildPublishEvent builds the publish envelope for one outbound turn:
// a fresh request id and a plain-text content event addressed to the
// conversation. Pure apart from the generated id.
func buildPublishEvent(conversationID, dialogID string, message harness.Message) (RequestEnvelope, error) {
	text, err := resolveOutboundText(message)
	if err != nil {
		return RequestEnvelope{}, err
	}

	return RequestEnvelope{
		Kind: "req",
		ID:   randomNumericID(requestIDLength),
		Type: typePublishEvent,
		Body: publishEventBody{
			DialogID:       dialogID,
			ConversationID: conversationID,
			Event: contentEventOut{
				Type:        eventContent,
				ContentType: "text/plain",
				Message:     text,
			},
		},
	}, nil
}

// clientPropertiesHeader renders the configured capability flags as
// the Client-Properties header value.
func clientPropertiesHeader(features harness.Features) (string, error) {
	var names []string
	if features.AutoMessages {
		names = append(names, featureAutoMessages)
	}
	if features.QuickReplies {
		names = append(names, featureQuickReplies)
	}
	if features.RichContent {
		names = append(names, featureRichContent)
	}
	if features.MultiDialog {
		names = append(names, featureMultiDialog)
	}

	encoded, err := json.Marshal(clientProperties{
		Type:     "ClientProperties",
		Features: names,
	})
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
