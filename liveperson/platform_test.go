// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package liveperson

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/convobench/convobench/harness"
	"github.com/convobench/convobench/lib/clock"
)

const (
	testAccountID    = "88000000"
	testBearerSecret = "app-secret"
	testConsumerJWT  = "consumer-jwt-value"
)

// fakePlatform is an in-process stand-in for the vendor API: one TLS
// server answering discovery, token exchange, on-behalf exchange, and
// the messaging conversation endpoints, with per-endpoint call
// counters and captured requests.
type fakePlatform struct {
	t      *testing.T
	server *httptest.Server

	mu             sync.Mutex
	directoryCalls int
	tokenCalls     int
	consumerCalls  int
	openCalls      int
	lastOpenBatch  []RequestEnvelope
	sendBodies     [][]byte
	sendHeaders    []http.Header

	// bearerToken is issued by the token endpoint; tests set it to a
	// JWT with a chosen expiry.
	bearerToken string
	// conversationID is issued on open.
	conversationID string
	// scrambleOpenOrder returns the batched open responses with the
	// correlated entry first instead of last.
	scrambleOpenOrder bool
	// dropOpenResponse omits the conversation request's entry from the
	// open response entirely.
	dropOpenResponse bool
	// failSend makes the send endpoint answer 500.
	failSend bool
	// failDirectory makes discovery answer 500.
	failDirectory bool
	// omitMessaging leaves asyncMessagingEnt out of the directory.
	omitMessaging bool
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()

	platform := &fakePlatform{
		t:              t,
		conversationID: "conv-123",
	}
	platform.bearerToken = makeTestJWT(time.Now().Add(time.Hour))
	platform.server = httptest.NewTLSServer(http.HandlerFunc(platform.handle))
	t.Cleanup(platform.server.Close)
	return platform
}

// domain is the host:port the directory hands out for every service.
func (p *fakePlatform) domain() string {
	return strings.TrimPrefix(p.server.URL, "https://")
}

func (p *fakePlatform) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/service/baseURI"):
		p.handleDirectory(w, r)
	case strings.Contains(r.URL.Path, "/app/token"):
		p.handleToken(w, r)
	case strings.HasSuffix(r.URL.Path, "/consumer"):
		p.handleConsumer(w, r)
	case strings.HasSuffix(r.URL.Path, "/conversation/send"):
		p.handleSend(w, r)
	case strings.HasSuffix(r.URL.Path, "/messaging/consumer/conversation"):
		p.handleOpen(w, r)
	default:
		p.t.Errorf("unexpected request path %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func (p *fakePlatform) handleDirectory(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.directoryCalls++
	fail := p.failDirectory
	omit := p.omitMessaging
	p.mu.Unlock()

	if fail {
		http.Error(w, "directory unavailable", http.StatusInternalServerError)
		return
	}

	entries := []baseURIEntry{
		{Service: serviceSentinel, Account: testAccountID, BaseURI: p.domain()},
		{Service: serviceIDP, Account: testAccountID, BaseURI: p.domain()},
	}
	if !omit {
		entries = append(entries, baseURIEntry{Service: serviceAsyncMessaging, Account: testAccountID, BaseURI: p.domain()})
	}
	writeJSON(p.t, w, baseURIResponse{BaseURIs: entries})
}

func (p *fakePlatform) handleToken(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.tokenCalls++
	token := p.bearerToken
	p.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		p.t.Errorf("parsing token form: %v", err)
	}
	if got := r.PostFormValue("client_secret"); got != testBearerSecret {
		p.t.Errorf("token exchange client_secret = %q, want %q", got, testBearerSecret)
	}
	writeJSON(p.t, w, map[string]string{"access_token": token})
}

func (p *fakePlatform) handleConsumer(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.consumerCalls++
	bearer := p.bearerToken
	p.mu.Unlock()

	// The raw bearer value, not "Bearer "-prefixed.
	if got := r.Header.Get("Authorization"); got != bearer {
		p.t.Errorf("on-behalf Authorization = %q, want raw bearer %q", got, bearer)
	}
	writeJSON(p.t, w, map[string]string{"token": testConsumerJWT})
}

func (p *fakePlatform) handleOpen(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.openCalls++
	scramble := p.scrambleOpenOrder
	drop := p.dropOpenResponse
	conversationID := p.conversationID
	p.mu.Unlock()

	var requests []RequestEnvelope
	if err := json.NewDecoder(r.Body).Decode(&requests); err != nil {
		p.t.Errorf("decoding open batch: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	p.mu.Lock()
	p.lastOpenBatch = requests
	p.mu.Unlock()

	var responses []map[string]any
	for _, request := range requests {
		switch request.Type {
		case typeSetUserProfile:
			responses = append(responses, map[string]any{"reqId": request.ID, "code": 200})
		case typeRequestConversation:
			if drop {
				continue
			}
			responses = append(responses, map[string]any{
				"reqId": request.ID,
				"code":  200,
				"body":  map[string]string{"conversationId": conversationID},
			})
		default:
			p.t.Errorf("unexpected open batch request type %q", request.Type)
		}
	}
	if scramble {
		for i, j := 0, len(responses)-1; i < j; i, j = i+1, j-1 {
			responses[i], responses[j] = responses[j], responses[i]
		}
	}
	writeJSON(p.t, w, responses)
}

func (p *fakePlatform) handleSend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		p.t.Errorf("reading send body: %v", err)
	}

	p.mu.Lock()
	p.sendBodies = append(p.sendBodies, body)
	p.sendHeaders = append(p.sendHeaders, r.Header.Clone())
	fail := p.failSend
	p.mu.Unlock()

	if fail {
		http.Error(w, "send rejected", http.StatusInternalServerError)
		return
	}
	writeJSON(p.t, w, map[string]any{"code": 200})
}

func (p *fakePlatform) counts() (directory, token, consumer, open, send int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.directoryCalls, p.tokenCalls, p.consumerCalls, p.openCalls, len(p.sendBodies)
}

// lastSend decodes the most recent publish envelope.
func (p *fakePlatform) lastSend() (RequestEnvelope, http.Header) {
	p.t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.sendBodies) == 0 {
		p.t.Fatal("no send captured")
	}
	var envelope RequestEnvelope
	if err := json.Unmarshal(p.sendBodies[len(p.sendBodies)-1], &envelope); err != nil {
		p.t.Fatalf("decoding captured send: %v", err)
	}
	return envelope, p.sendHeaders[len(p.sendHeaders)-1]
}

// newTestClient builds a Client pointed at the fake platform with a
// quiet logger and the supplied clock.
func (p *fakePlatform) newTestClient(clk clock.Clock) *Client {
	p.t.Helper()

	client, err := NewClient(ClientConfig{
		DiscoveryURL: p.server.URL,
		HTTPClient:   p.server.Client(),
		Logger:       slog.New(slog.DiscardHandler),
		Clock:        clk,
	})
	if err != nil {
		p.t.Fatalf("NewClient: %v", err)
	}
	return client
}

func testConfig() harness.Config {
	return harness.Config{
		ClientID:      "client-id",
		ClientSecret:  testBearerSecret,
		AccountID:     testAccountID,
		ExtConsumerID: "ext-consumer-1",
	}
}

// makeTestJWT builds an unsigned three-segment token whose payload
// carries the given expiry.
func makeTestJWT(expiry time.Time) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payload := base64.RawURLEncoding.EncodeToString(fmt.Appendf(nil, `{"exp":%d}`, expiry.Unix()))
	return header + "." + payload + ".sig"
}

func writeJSON(t *testing.T, w http.ResponseWriter, value any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}
