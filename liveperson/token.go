// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package liveperson

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/convobench/convobench/lib/secret"
)

// expirySkew is subtracted from the bearer token's exp claim: a token
// within this window of expiring is treated as already stale, so a
// request never leaves the process carrying a token that dies in
// flight.
const expirySkew = 60 * time.Second

// TokenManager owns the credentials of one conversation session: the
// app bearer token (renewable, expiry-checked) and the on-behalf
// consumer token (fetched once, valid for the session). Tokens live in
// locked secret buffers and are discarded together when the session
// closes. A TokenManager belongs to exactly one Conversation; nothing
// is shared across instances.
type TokenManager struct {
	client        *Client
	accountID     string
	clientID      string
	clientSecret  string
	extConsumerID string

	mu        sync.Mutex
	bearer    *secret.Buffer
	bearerExp time.Time

	// renewal collapses concurrent bearer refreshes into one exchange.
	renewal singleflight.Group

	onBehalfMu sync.Mutex
	onBehalf   *secret.Buffer
}

// NewTokenManager creates a TokenManager bound to one client and one
// set of account credentials.
func NewTokenManager(client *Client, accountID, clientID, clientSecret, extConsumerID string) *TokenManager {
	return &TokenManager{
		client:        client,
		accountID:     accountID,
		clientID:      clientID,
		clientSecret:  clientSecret,
		extConsumerID: extConsumerID,
	}
}

// BearerToken returns a non-stale bearer token, renewing it first when
// the cached one is missing or inside the expiry skew. Concurrent
// callers during a renewal share a single exchange. The returned
// string is a heap copy for use in a header; the durable secret stays
// in the manager's buffer.
func (m *TokenManager) BearerToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.bearer != nil && !m.stale() {
		token := m.bearer.String()
		m.mu.Unlock()
		return token, nil
	}
	m.mu.Unlock()

	result, err, _ := m.renewal.Do("bearer", func() (any, error) {
		// A caller that lost the race to an already-completed flight
		// re-checks the cache here instead of renewing again.
		m.mu.Lock()
		if m.bearer != nil && !m.stale() {
			token := m.bearer.String()
			m.mu.Unlock()
			return token, nil
		}
		m.mu.Unlock()

		return m.renewBearer(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// stale reports whether the cached bearer token expires within the
// skew window. Callers hold m.mu. A token whose expiry could not be
// decoded is always stale.
func (m *TokenManager) stale() bool {
	if m.bearerExp.IsZero() {
		return true
	}
	return m.bearerExp.Before(m.client.clock.Now().Add(expirySkew))
}

// renewBearer performs the client-credentials exchange against the
// sentinel service and replaces the cached token.
func (m *TokenManager) renewBearer(ctx context.Context) (string, error) {
	domain, err := m.client.resolveDomain(ctx, m.accountID, serviceSentinel)
	if err != nil {
		return "", &AuthError{Op: "bearer token exchange", Err: err}
	}

	requestURL := fmt.Sprintf("https://%s/sentinel/api/account/%s/app/token?v=1.0&grant_type=client_credentials", domain, m.accountID)
	form := url.Values{
		"client_id":     {m.clientID},
		"client_secret": {m.clientSecret},
	}
	body, err := m.client.doForm(ctx, requestURL, form)
	if err != nil {
		return "", &AuthError{Op: "bearer token exchange", Err: err}
	}

	var response appTokenResponse
	if err := unmarshalBody(body, &response); err != nil {
		return "", &AuthError{Op: "bearer token exchange", Err: err}
	}
	if response.AccessToken == "" {
		return "", &AuthError{Op: "bearer token exchange", Err: fmt.Errorf("response carried no access token")}
	}

	buffer, err := secret.NewFromString(response.AccessToken)
	if err != nil {
		return "", &AuthError{Op: "bearer token exchange", Err: err}
	}

	expiry, expiryErr := tokenExpiry(response.AccessToken)

	m.mu.Lock()
	if m.bearer != nil {
		m.bearer.Close()
	}
	m.bearer = buffer
	m.bearerExp = expiry
	m.mu.Unlock()

	if expiryErr != nil {
		m.client.logger.Warn("bearer token expiry not decodable, treating as stale",
			"account_id", m.accountID,
			"error", expiryErr,
		)
	} else {
		m.client.logger.Debug("bearer token renewed",
			"account_id", m.accountID,
			"expires_at", expiry,
		)
	}

	return response.AccessToken, nil
}

// OnBehalfToken returns the consumer token for the configured external
// consumer identity, fetching it on first use. One fetch per session:
// the token stays valid for the conversation's lifetime and is never
// refreshed.
func (m *TokenManager) OnBehalfToken(ctx context.Context) (string, error) {
	m.onBehalfMu.Lock()
	defer m.onBehalfMu.Unlock()

	if m.onBehalf != nil {
		return m.onBehalf.String(), nil
	}

	bearer, err := m.BearerToken(ctx)
	if err != nil {
		return "", err
	}

	domain, err := m.client.resolveDomain(ctx, m.accountID, serviceIDP)
	if err != nil {
		return "", &AuthError{Op: "on-behalf token exchange", Err: err}
	}

	requestURL := fmt.Sprintf("https://%s/api/account/%s/consumer?v=1.0", domain, m.accountID)
	// The idp endpoint wants the raw bearer value, not a
	// "Bearer "-prefixed header.
	headers := map[string]string{"Authorization": bearer}
	requestBody := map[string]string{"ext_consumer_id": m.extConsumerID}

	body, err := m.client.doRequest(ctx, http.MethodPost, requestURL, headers, requestBody)
	if err != nil {
		return "", &AuthError{Op: "on-behalf token exchange", Err: err}
	}

	var response consumerTokenResponse
	if err := unmarshalBody(body, &response); err != nil {
		return "", &AuthError{Op: "on-behalf token exchange", Err: err}
	}
	if response.Token == "" {
		return "", &AuthError{Op: "on-behalf token exchange", Err: fmt.Errorf("response carried no consumer token")}
	}

	buffer, err := secret.NewFromString(response.Token)
	if err != nil {
		return "", &AuthError{Op: "on-behalf token exchange", Err: err}
	}
	m.onBehalf = buffer

	m.client.logger.Debug("on-behalf token issued",
		"account_id", m.accountID,
		"ext_consumer_id", m.extConsumerID,
	)

	return response.Token, nil
}

// CheckCredentials performs a bearer exchange and reports the issued
// token's expiry — zero when the expiry was not decodable. The token
// value itself never leaves the manager; this is the diagnostic
// surface for credential checks.
func (m *TokenManager) CheckCredentials(ctx context.Context) (time.Time, error) {
	if _, err := m.BearerToken(ctx); err != nil {
		return time.Time{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bearerExp, nil
}

// Discard zeros and releases both cached tokens. Safe to call multiple
// times and on a manager that never held a token.
func (m *TokenManager) Discard() {
	m.mu.Lock()
	if m.bearer != nil {
		m.bearer.Close()
		m.bearer = nil
	}
	m.bearerExp = time.Time{}
	m.mu.Unlock()

	m.onBehalfMu.Lock()
	if m.onBehalf != nil {
		m.onBehalf.Close()
		m.onBehalf = nil
	}
	m.onBehalfMu.Unlock()
}

// tokenExpiry extracts the exp claim from a JWT without verifying the
// signature — the adapter only needs the expiry for its staleness
// check, not the token's authenticity.
func tokenExpiry(token string) (time.Time, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return time.Time{}, fmt.Errorf("token is not a three-segment JWT")
	}

	payload, err := base64.RawURLEncoding.DecodeString(segments[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("decoding payload segment: %w", err)
	}

	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parsing claims: %w", err)
	}
	if claims.Exp == 0 {
		return time.Time{}, fmt.Errorf("claims carry no exp")
	}

	return time.Unix(claims.Exp, 0), nil
}
