// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package liveperson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/convobench/convobench/lib/clock"
	"github.com/convobench/convobench/lib/netutil"
)

// defaultDiscoveryURL is the well-known entry point for the service
// directory. Everything else is resolved per account from there.
const defaultDiscoveryURL = "https://api.liveperson.net"

// defaultTimeout bounds each API round-trip when the caller does not
// supply an HTTP client.
const defaultTimeout = 30 * time.Second

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// DiscoveryURL overrides the service directory base URL. Empty
	// uses the production discovery endpoint. Tests point this at an
	// httptest server.
	DiscoveryURL string
	// HTTPClient is used for all requests. If nil, a client with a
	// 30-second timeout is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
	// Clock supplies the current time for credential-expiry checks.
	// If nil, the real clock is used.
	Clock clock.Clock
}

// Client holds the HTTP transport and the per-instance service
// directory cache. One Client belongs to one adapter instance; nothing
// here is shared across conversations.
type Client struct {
	discoveryURL string
	httpClient   *http.Client
	logger       *slog.Logger
	clock        clock.Clock
	directory    serviceDirectory
}

// NewClient creates a Client. Request URLs are built by string
// concatenation against the resolved domains, so the discovery URL is
// validated once here and stored with its trailing slash stripped.
func NewClient(config ClientConfig) (*Client, error) {
	discoveryURL := config.DiscoveryURL
	if discoveryURL == "" {
		discoveryURL = defaultDiscoveryURL
	}
	if _, err := url.Parse(discoveryURL); err != nil {
		return nil, fmt.Errorf("liveperson: invalid discovery URL %q: %w", discoveryURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &Client{
		discoveryURL: strings.TrimRight(discoveryURL, "/"),
		httpClient:   httpClient,
		logger:       logger,
		clock:        clk,
	}, nil
}

// doRequest performs a JSON API request and returns the response body.
// On 2xx, returns the body. On any other status, returns an *APIError
// carrying the raw body. headers may be nil.
func (c *Client) doRequest(ctx context.Context, method, requestURL string, headers map[string]string, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("liveperson: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("liveperson: creating request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	return c.do(request)
}

// doForm performs a form-encoded POST (the bearer token exchange is
// the only form endpoint in the protocol).
func (c *Client) doForm(ctx context.Context, requestURL string, form url.Values) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("liveperson: creating request: %w", err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(request)
}

func (c *Client) do(request *http.Request) ([]byte, error) {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("liveperson: request to %s %s failed: %w", request.Method, request.URL.Path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("liveperson: reading response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	return nil, &APIError{
		StatusCode: response.StatusCode,
		Body:       strings.TrimSpace(string(responseBody)),
	}
}
