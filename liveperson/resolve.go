// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package liveperson

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
)

// Logical service names resolved through the account directory.
const (
	// serviceSentinel is the bearer-token exchange service.
	serviceSentinel = "sentinel"
	// serviceIDP issues on-behalf consumer tokens.
	serviceIDP = "idp"
	// serviceAsyncMessaging hosts the consumer conversation endpoints.
	serviceAsyncMessaging = "asyncMessagingEnt"
)

// serviceDirectory caches the service→domain mapping per account. The
// directory for an account is fetched once and immutable afterward for
// the Client's lifetime. The cache is owned by one Client and thereby
// scoped to one adapter instance.
type serviceDirectory struct {
	mu sync.Mutex
	// domains maps accountID → service name → domain.
	domains map[string]map[string]string
}

// baseURIResponse is the directory document returned by the discovery
// endpoint.
type baseURIResponse struct {
	BaseURIs []baseURIEntry `json:"baseURIs"`
}

type baseURIEntry struct {
	Service string `json:"service"`
	Account string `json:"account"`
	BaseURI string `json:"baseURI"`
}

// directoryFor returns the account's cached service→domain mapping,
// fetching the full directory on the first call. A failed fetch is not
// cached; the next call retries.
func (c *Client) directoryFor(ctx context.Context, accountID string) (map[string]string, error) {
	c.directory.mu.Lock()
	defer c.directory.mu.Unlock()

	if c.directory.domains == nil {
		c.directory.domains = make(map[string]map[string]string)
	}

	if byService, cached := c.directory.domains[accountID]; cached {
		return byService, nil
	}

	requestURL := fmt.Sprintf("%s/api/account/%s/service/baseURI?version=1.0", c.discoveryURL, accountID)
	body, err := c.doRequest(ctx, http.MethodGet, requestURL, nil, nil)
	if err != nil {
		return nil, err
	}

	var directory baseURIResponse
	if err := unmarshalBody(body, &directory); err != nil {
		return nil, err
	}

	byService := make(map[string]string, len(directory.BaseURIs))
	for _, entry := range directory.BaseURIs {
		byService[entry.Service] = entry.BaseURI
	}
	c.directory.domains[accountID] = byService

	c.logger.Debug("fetched service directory",
		"account_id", accountID,
		"services", len(byService),
	)
	return byService, nil
}

// resolveDomain returns the domain serving the named service for the
// account. The first call for an account fetches the full directory
// and caches every mapping; later calls for any service under that
// account hit the cache without a network call. A fetch failure or an
// unlisted service is a *DiscoveryError — fatal, never retried here.
func (c *Client) resolveDomain(ctx context.Context, accountID, serviceName string) (string, error) {
	byService, err := c.directoryFor(ctx, accountID)
	if err != nil {
		return "", &DiscoveryError{Service: serviceName, AccountID: accountID, Err: err}
	}

	domain, found := byService[serviceName]
	if !found || domain == "" {
		return "", &DiscoveryError{Service: serviceName, AccountID: accountID, Err: ErrServiceNotListed}
	}
	return domain, nil
}

// ServiceDomain pairs a logical service name with its resolved domain.
type ServiceDomain struct {
	Service string
	Domain  string
}

// ResolveAll returns every service→domain mapping the account's
// directory lists, sorted by service name. Diagnostic surface for the
// CLI; the adapter itself resolves services individually.
func (c *Client) ResolveAll(ctx context.Context, accountID string) ([]ServiceDomain, error) {
	byService, err := c.directoryFor(ctx, accountID)
	if err != nil {
		return nil, &DiscoveryError{AccountID: accountID, Err: err}
	}

	entries := make([]ServiceDomain, 0, len(byService))
	for service, domain := range byService {
		entries = append(entries, ServiceDomain{Service: service, Domain: domain})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Service < entries[j].Service })
	return entries, nil
}
