// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package liveperson

import (
	"encoding/json"
	"fmt"
)

// Request type identifiers for the consumer messaging protocol.
const (
	typeSetUserProfile      = "userprofile.SetUserProfile"
	typeRequestConversation = "cm.ConsumerRequestConversation"
	typeUpdateConversation  = "cm.UpdateConversationField"
	typePublishEvent        = "ms.PublishEvent"
)

// Inbound notification type identifiers.
const (
	typeMessagingEvent     = "ms.MessagingEventNotification"
	typeConversationChange = "cqm.ExConversationChangeNotification"
)

// Originator roles attached to inbound messaging events.
const (
	// RoleAssignedAgent is the human agent assigned to the conversation.
	RoleAssignedAgent = "ASSIGNED_AGENT"
	// RoleController is an automated participant (bot).
	RoleController = "CONTROLLER"
	// RoleConsumer is the consumer side — our own echoes.
	RoleConsumer = "CONSUMER"
)

// SkillUnrouted is the sentinel skill id reported while no skill is
// assigned.
const SkillUnrouted = "-1"

// RequestEnvelope is a protocol request. Envelopes are ephemeral —
// built fresh per send with a unique id so responses can be correlated
// to in-flight requests.
type RequestEnvelope struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Type string `json:"type"`
	Body any    `json:"body,omitempty"`
}

// responseEnvelope is one entry of a batched response. Body stays raw
// until the envelope is correlated to the request that cares about it.
type responseEnvelope struct {
	ReqID string          `json:"reqId"`
	Code  int             `json:"code,omitempty"`
	Type  string          `json:"type,omitempty"`
	Body  json.RawMessage `json:"body,omitempty"`
}

// conversationRequestBody opens a conversation for a brand.
type conversationRequestBody struct {
	BrandID             string              `json:"brandId"`
	ConversationContext conversationContext `json:"conversationContext"`
	CampaignInfo        *campaignInfo       `json:"campaignInfo,omitempty"`
}

// conversationContext carries the fixed context type/language plus the
// per-session nonce used as the correlation/session value.
type conversationContext struct {
	SessionID            string `json:"sessionId"`
	InteractionContextID string `json:"interactionContextId"`
	Type                 string `json:"type"`
	Lang                 string `json:"lang"`
}

// campaignInfo is attached only when campaign and engagement ids were
// both supplied.
type campaignInfo struct {
	CampaignID   string `json:"campaignId"`
	EngagementID string `json:"engagementId"`
}

// conversationResponseBody is the correlated response to a
// conversation request.
type conversationResponseBody struct {
	ConversationID string `json:"conversationId"`
}

// updateConversationFieldBody closes a conversation.
type updateConversationFieldBody struct {
	ConversationID    string            `json:"conversationId"`
	ConversationField conversationField `json:"conversationField"`
}

type conversationField struct {
	Field             string `json:"field"`
	ConversationState string `json:"conversationState"`
}

// publishEventBody is the body of an outbound ms.PublishEvent.
type publishEventBody struct {
	DialogID       string          `json:"dialogId"`
	ConversationID string          `json:"conversationId"`
	Event          contentEventOut `json:"event"`
}

type contentEventOut struct {
	Type        string `json:"type"`
	ContentType string `json:"contentType"`
	Message     string `json:"message"`
}

// clientProperties is the client-capabilities header value.
type clientProperties struct {
	Type     string   `json:"type"`
	Features []string `json:"features"`
}

// appTokenResponse is returned by the bearer-token exchange.
type appTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// consumerTokenResponse is returned by the on-behalf exchange.
type consumerTokenResponse struct {
	Token string `json:"token"`
}

// InboundNotification is the top-level shape of asynchronously
// received payloads: messaging events and conversation-change
// (routing) notifications share it.
type InboundNotification struct {
	Kind string      `json:"kind,omitempty"`
	Type string      `json:"type"`
	Body inboundBody `json:"body"`
}

type inboundBody struct {
	Changes []Change `json:"changes"`
}

// Change is one entry of an inbound notification. Messaging events
// carry ConversationID, Event, and OriginatorMetadata; routing
// notifications carry Result instead, with the conversation id under a
// different parent key.
type Change struct {
	Sequence           int                 `json:"sequence,omitempty"`
	ConversationID     string              `json:"conversationId,omitempty"`
	DialogID           string              `json:"dialogId,omitempty"`
	Event              *InboundEvent       `json:"event,omitempty"`
	OriginatorMetadata *OriginatorMetadata `json:"originatorMetadata,omitempty"`
	Result             *ChangeResult       `json:"result,omitempty"`
}

// OriginatorMetadata identifies the participant that produced an event.
type OriginatorMetadata struct {
	ID   string `json:"id,omitempty"`
	Role string `json:"role"`
}

// ChangeResult is the payload of a conversation-change notification.
type ChangeResult struct {
	ConvID              string               `json:"convId"`
	ConversationDetails *ConversationDetails `json:"conversationDetails,omitempty"`
}

// ConversationDetails carries routing metadata. SkillID "-1" means
// unrouted.
type ConversationDetails struct {
	SkillID string `json:"skillId"`
}

// InboundEvent is a content or rich-content event from a non-consumer
// participant (after role filtering).
type InboundEvent struct {
	Type         string        `json:"type"`
	ContentType  string        `json:"contentType,omitempty"`
	Message      string        `json:"message,omitempty"`
	QuickReplies *QuickReplies `json:"quickReplies,omitempty"`
	Content      *Element      `json:"content,omitempty"`
}

// QuickReplies is the quick-reply collection attached to a content
// event or a rich-content root.
type QuickReplies struct {
	Type    string         `json:"type"`
	Replies []ButtonSource `json:"replies"`
}

// unmarshalBody decodes a response body with error context.
func unmarshalBody(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
