// Copyright 2026 The Convobench Authors
// SPDX-License-Identifier: Apache-2.0

package liveperson

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from a vendor endpoint. The response
// body is carried verbatim for diagnostics; vendor error bodies do not
// follow a single structured shape.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Body is the raw response body.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("liveperson: unexpected %d response: %s", e.StatusCode, e.Body)
}

// DiscoveryError reports that a logical service name could not be
// resolved to a domain: the directory fetch failed or the service is
// not listed for the account. Fatal to the caller; the adapter never
// retries discovery.
type DiscoveryError struct {
	Service   string
	AccountID string
	Err       error
}

func (e *DiscoveryError) Error() string {
	if e.Service == "" {
		return fmt.Sprintf("liveperson: fetching service directory (account %s): %v", e.AccountID, e.Err)
	}
	return fmt.Sprintf("liveperson: resolving domain for service %q (account %s): %v", e.Service, e.AccountID, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// ErrServiceNotListed is wrapped by DiscoveryError when the directory
// was fetched successfully but does not contain the requested service.
var ErrServiceNotListed = errors.New("service not listed in account directory")

// AuthError reports a failed credential exchange (bearer renewal or
// on-behalf token fetch). It aborts the operation that needed the
// credential.
type AuthError struct {
	// Op names the exchange that failed ("bearer token exchange",
	// "on-behalf token exchange").
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("liveperson: %s failed: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// OpenError reports that conversation open did not yield a correlated
// conversation id. The session remains unopened.
type OpenError struct {
	Reason string
	Err    error
}

func (e *OpenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("liveperson: conversation open failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("liveperson: conversation open failed: %s", e.Reason)
}

func (e *OpenError) Unwrap() error { return e.Err }

// LifecycleError reports an operation invoked in the wrong session
// state — a programmer error on the caller's side.
type LifecycleError struct {
	Op    string
	State State
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("liveperson: cannot %s conversation in state %s", e.Op, e.State)
}

// UnsupportedContentError reports outbound content the protocol
// adapter cannot express. The message is not sent.
type UnsupportedContentError struct {
	Reason string
}

func (e *UnsupportedContentError) Error() string {
	return fmt.Sprintf("liveperson: unsupported outbound content: %s", e.Reason)
}

// IsLifecycleError reports whether err is a *LifecycleError.
func IsLifecycleError(err error) bool {
	var lifecycleErr *LifecycleError
	return errors.As(err, &lifecycleErr)
}
