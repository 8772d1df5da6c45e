// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package liveperson

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/convobench/convobench/harness"
)

// State is a conversation session's lifecycle position.
type State int

const (
	StateUnopened State = iota
	StateOpening
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "UNOPENED"
	case StateOpening:
		return "OPENING"
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Conversation is one chat session against the consumer messaging
// API. It owns its token manager, session nonce, conversation id, and
// skill tracker — nothing is shared with other Conversation instances,
// even for the same account. A Conversation drives exactly one
// conversation from Open to Close and is not reusable afterward.
type Conversation struct {
	client *Client
	config harness.Config
	tokens *TokenManager

	mu             sync.Mutex
	state          State
	sessionNonce   string
	conversationID string
	dialogID       string
	skillID        string
}

var _ harness.Adapter = (*Conversation)(nil)

// NewConversation creates an unopened conversation session. The config
// must already be validated and defaulted.
func NewConversation(client *Client, config harness.Config) *Conversation {
	return &Conversation{
		client:  client,
		config:  config,
		tokens:  NewTokenManager(client, config.AccountID, config.ClientID, config.ClientSecret, config.ExtConsumerID),
		state:   StateUnopened,
		skillID: SkillUnrouted,
	}
}

// Open starts the conversation: it batches a user-profile request with
// the conversation request, correlates the response by the
// conversation request's id, and records the issued conversation id.
// On failure the session returns to UNOPENED. A caller that walks away
// from an in-flight Open must discard the instance rather than reuse
// it.
func (c *Conversation) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateUnopened {
		state := c.state
		c.mu.Unlock()
		return &LifecycleError{Op: "open", State: state}
	}
	c.state = StateOpening
	c.sessionNonce = randomNumericID(requestIDLength)
	c.mu.Unlock()

	conversationID, err := c.openConversation(ctx)
	if err != nil {
		c.mu.Lock()
		if c.state == StateOpening {
			c.state = StateUnopened
		}
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.state = StateOpen
	c.conversationID = conversationID
	c.dialogID = conversationID
	c.mu.Unlock()

	c.client.logger.Info("conversation opened",
		"account_id", c.config.AccountID,
		"conversation_id", conversationID,
	)
	return nil
}

// messagingHeaders builds the credential headers every messaging call
// carries: the app bearer token as Authorization and the consumer
// token in X-LP-ON-BEHALF.
func (c *Conversation) messagingHeaders(ctx context.Context) (map[string]string, error) {
	bearer, err := c.tokens.BearerToken(ctx)
	if err != nil {
		return nil, err
	}
	onBehalf, err := c.tokens.OnBehalfToken(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"Authorization":  bearer,
		"X-LP-ON-BEHALF": onBehalf,
	}, nil
}

func (c *Conversation) openConversation(ctx context.Context) (string, error) {
	headers, err := c.messagingHeaders(ctx)
	if err != nil {
		return "", err
	}

	domain, err := c.client.resolveDomain(ctx, c.config.AccountID, serviceAsyncMessaging)
	if err != nil {
		return "", &OpenError{Reason: "resolving messaging domain", Err: err}
	}

	profile := c.config.UserProfile
	if profile == nil {
		profile = map[string]any{}
	}

	conversationRequestID := randomNumericID(requestIDLength)
	requests := []RequestEnvelope{
		{
			Kind: "req",
			ID:   randomNumericID(requestIDLength),
			Type: typeSetUserProfile,
			Body: profile,
		},
		{
			Kind: "req",
			ID:   conversationRequestID,
			Type: typeRequestConversation,
			Body: conversationRequestBody{
				BrandID: c.config.AccountID,
				ConversationContext: conversationContext{
					SessionID:            c.sessionNonce,
					InteractionContextID: "2",
					Type:                 "SharkContext",
					Lang:                 "en-US",
				},
				CampaignInfo: c.campaignInfo(),
			},
		},
	}

	properties, err := clientPropertiesHeader(c.config.Features)
	if err != nil {
		return "", &OpenError{Reason: "encoding client properties", Err: err}
	}
	headers["Client-Properties"] = properties

	requestURL := fmt.Sprintf("https://%s/api/account/%s/messaging/consumer/conversation?v=3", domain, c.config.AccountID)
	body, err := c.client.doRequest(ctx, http.MethodPost, requestURL, headers, requests)
	if err != nil {
		return "", &OpenError{Reason: "conversation request", Err: err}
	}

	var responses []responseEnvelope
	if err := unmarshalBody(body, &responses); err != nil {
		return "", &OpenError{Reason: "parsing conversation response", Err: err}
	}

	// Only the conversation request's response matters; the profile
	// request's entry, if present, resolves to nothing.
	pending := map[string]*responseEnvelope{conversationRequestID: nil}
	for index := range responses {
		if _, wanted := pending[responses[index].ReqID]; wanted {
			pending[responses[index].ReqID] = &responses[index]
		}
	}

	matched := pending[conversationRequestID]
	if matched == nil {
		return "", &OpenError{Reason: fmt.Sprintf("no response correlated to conversation request id %s", conversationRequestID)}
	}

	var result conversationResponseBody
	if err := unmarshalBody(matched.Body, &result); err != nil {
		return "", &OpenError{Reason: "parsing correlated response body", Err: err}
	}
	if result.ConversationID == "" {
		return "", &OpenError{Reason: "correlated response carried no conversation id"}
	}
	return result.ConversationID, nil
}

// campaignInfo returns the routing pair, or nil unless both halves
// were configured.
func (c *Conversation) campaignInfo() *campaignInfo {
	if c.config.CampaignID == "" || c.config.EngagementID == "" {
		return nil
	}
	return &campaignInfo{
		CampaignID:   c.config.CampaignID,
		EngagementID: c.config.EngagementID,
	}
}

// Send publishes one outbound turn. The session must be OPEN.
func (c *Conversation) Send(ctx context.Context, message harness.Message) error {
	c.mu.Lock()
	if c.state != StateOpen {
		state := c.state
		c.mu.Unlock()
		return &LifecycleError{Op: "send on", State: state}
	}
	conversationID := c.conversationID
	dialogID := c.dialogID
	c.mu.Unlock()

	envelope, err := buildPublishEvent(conversationID, dialogID, message)
	if err != nil {
		return err
	}

	headers, err := c.messagingHeaders(ctx)
	if err != nil {
		return err
	}
	properties, err := clientPropertiesHeader(c.config.Features)
	if err != nil {
		return fmt.Errorf("liveperson: encoding client properties: %w", err)
	}
	headers["Client-Properties"] = properties

	domain, err := c.client.resolveDomain(ctx, c.config.AccountID, serviceAsyncMessaging)
	if err != nil {
		return err
	}

	requestURL := fmt.Sprintf("https://%s/api/account/%s/messaging/consumer/conversation/send?v=3", domain, c.config.AccountID)
	if _, err := c.client.doRequest(ctx, http.MethodPost, requestURL, headers, envelope); err != nil {
		return err
	}

	c.client.logger.Debug("turn published",
		"conversation_id", conversationID,
		"request_id", envelope.ID,
	)
	return nil
}

// Close ends the conversation with a best-effort state update. The
// credential caches are discarded whether or not the update succeeds,
// so a later session can never resume with this session's tokens. The
// session finishes in CLOSED either way.
func (c *Conversation) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateOpen {
		state := c.state
		c.mu.Unlock()
		return &LifecycleError{Op: "close", State: state}
	}
	c.state = StateClosing
	conversationID := c.conversationID
	c.mu.Unlock()

	defer func() {
		c.tokens.Discard()
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		c.client.logger.Info("conversation closed", "conversation_id", conversationID)
	}()

	return c.sendClose(ctx, conversationID)
}

func (c *Conversation) sendClose(ctx context.Context, conversationID string) error {
	headers, err := c.messagingHeaders(ctx)
	if err != nil {
		return err
	}

	domain, err := c.client.resolveDomain(ctx, c.config.AccountID, serviceAsyncMessaging)
	if err != nil {
		return err
	}

	envelope := RequestEnvelope{
		Kind: "req",
		ID:   randomNumericID(requestIDLength),
		Type: typeUpdateConversation,
		Body: updateConversationFieldBody{
			ConversationID: conversationID,
			ConversationField: conversationField{
				Field:             "ConversationStateField",
				ConversationState: "CLOSE",
			},
		},
	}

	requestURL := fmt.Sprintf("https://%s/api/account/%s/messaging/consumer/conversation/send?v=3", domain, c.config.AccountID)
	_, err = c.client.doRequest(ctx, http.MethodPost, requestURL, headers, envelope)
	return err
}

// OnInbound feeds one raw asynchronously received payload to the
// session. Routing-change notifications update the skill tracker and
// yield no message. Messaging events from non-consumer participants
// normalize to a harness message; consumer echoes and foreign
// conversations yield nil.
func (c *Conversation) OnInbound(raw []byte) (*harness.Message, error) {
	var notification InboundNotification
	if err := unmarshalBody(raw, &notification); err != nil {
		return nil, fmt.Errorf("liveperson: %w", err)
	}

	c.mu.Lock()
	conversationID := c.conversationID
	c.mu.Unlock()

	switch notification.Type {
	case typeConversationChange:
		c.applyRoutingChanges(notification.Body.Changes, conversationID)
		return nil, nil

	case typeMessagingEvent:
		for _, change := range notification.Body.Changes {
			if change.ConversationID != conversationID {
				continue
			}
			if change.OriginatorMetadata == nil || !eligibleRole(change.OriginatorMetadata.Role) {
				continue
			}
			message := normalizeEvent(change.Event, c.client.logger)
			if empty(message) {
				continue
			}
			c.client.logger.Debug("inbound turn normalized",
				"conversation_id", conversationID,
				"role", change.OriginatorMetadata.Role,
				"text", trimmedPreview(message.Text),
			)
			return message, nil
		}
		return nil, nil

	default:
		c.client.logger.Debug("ignoring inbound notification of unhandled type", "notification_type", notification.Type)
		return nil, nil
	}
}

func (c *Conversation) applyRoutingChanges(changes []Change, conversationID string) {
	for _, change := range changes {
		if change.Result == nil || change.Result.ConvID != conversationID {
			continue
		}
		if change.Result.ConversationDetails == nil {
			continue
		}

		skillID := change.Result.ConversationDetails.SkillID
		c.mu.Lock()
		if c.state != StateOpen {
			// Skill tracking is scoped to the live session; a routing
			// event arriving after Close must not mutate it.
			c.mu.Unlock()
			return
		}
		c.skillID = skillID
		c.mu.Unlock()

		c.client.logger.Debug("conversation routing updated",
			"conversation_id", conversationID,
			"skill_id", skillID,
		)
	}
}

// Matches reports whether a raw inbound payload belongs to this
// session: a messaging event addressed to the conversation id, or a
// routing change carrying the same id under its result key.
func (c *Conversation) Matches(raw []byte) bool {
	c.mu.Lock()
	conversationID := c.conversationID
	c.mu.Unlock()
	if conversationID == "" {
		return false
	}

	var notification InboundNotification
	if err := unmarshalBody(raw, &notification); err != nil {
		return false
	}

	for _, change := range notification.Body.Changes {
		if change.ConversationID == conversationID {
			return true
		}
		if change.Result != nil && change.Result.ConvID == conversationID {
			return true
		}
	}
	return false
}

// ConversationID returns the server-issued conversation id, empty
// until the session is OPEN.
func (c *Conversation) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// SkillID returns the current routing skill, "-1" while unrouted.
func (c *Conversation) SkillID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skillID
}

// State returns the session's lifecycle state.
func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
