// Package apiclient is the gateway's view of the platform backend REST API.
// It owns exactly two responsibilities: forwarding the caller's bearer token
// and attaching the X-Tenant-Id header from the request-scoped tenant
// binding. Business semantics live server-side.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"admingate/internal/session"
	"admingate/internal/tenant"
	"admingate/pkg/httputil"
)

var (
	// ErrNoTenantBound is returned when a tenant-scoped call is attempted
	// before the guard has bound a tenant. Hitting it means the pipeline
	// ordering invariant was violated.
	ErrNoTenantBound = errors.New("apiclient: no tenant bound on context")
	// ErrNoSession is returned when an authenticated call is attempted
	// without a session on the context.
	ErrNoSession = errors.New("apiclient: no session on context")
)

// Client calls the platform backend.
type Client struct {
	baseURL string
	http    *httputil.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP wrapper. Tests inject an
// httptest-backed client through this.
func WithHTTPClient(h *httputil.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New creates a backend client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httputil.NewClient(httputil.WithTimeout(15*time.Second), httputil.WithRetries(1)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// authHeaders builds the headers for an authenticated, non-tenant-scoped
// call.
func authHeaders(ctx context.Context) (map[string]string, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, ErrNoSession
	}
	return map[string]string{"Authorization": "Bearer " + sess.Token}, nil
}

// tenantHeaders builds the headers for a tenant-scoped call. The tenant
// header comes from the context binding; if none is bound the call is
// refused locally instead of letting the backend reject it.
func tenantHeaders(ctx context.Context) (map[string]string, error) {
	headers, err := authHeaders(ctx)
	if err != nil {
		return nil, err
	}
	b, ok := tenant.BindingFromContext(ctx)
	if !ok {
		return nil, ErrNoTenantBound
	}
	headers[tenant.Header] = b.HeaderValue()
	return headers, nil
}

// Identity is the backend's answer to a credential check.
type Identity struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}

// VerifyCredentials checks a login against the backend identity service.
// Unauthenticated by design: this is the call that earns a session.
func (c *Client) VerifyCredentials(ctx context.Context, email, password string) (*Identity, error) {
	body := map[string]string{"email": email, "password": password}
	var id Identity
	if err := c.http.PostJSON(ctx, c.baseURL+"/auth/verify", nil, body, &id); err != nil {
		return nil, fmt.Errorf("verify credentials: %w", err)
	}
	return &id, nil
}

// AllTenants fetches every tenant on the platform. Cross-tenant by nature,
// so it sends no tenant header; the backend enforces that only platform
// admins may call it.
func (c *Client) AllTenants(ctx context.Context) ([]tenant.Tenant, error) {
	headers, err := authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	var tenants []tenant.Tenant
	if err := c.http.GetJSON(ctx, c.baseURL+"/tenants", headers, &tenants); err != nil {
		return nil, fmt.Errorf("fetch all tenants: %w", err)
	}
	return tenants, nil
}

// AvailableTenants fetches the authenticated user's authorized tenant list.
// This is a global call: it needs a session but no tenant binding.
func (c *Client) AvailableTenants(ctx context.Context) ([]tenant.Tenant, error) {
	headers, err := authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	var tenants []tenant.Tenant
	if err := c.http.GetJSON(ctx, c.baseURL+"/available-tenants", headers, &tenants); err != nil {
		return nil, fmt.Errorf("fetch available tenants: %w", err)
	}
	return tenants, nil
}

// MyPermissions fetches the permission strings for the (user, tenant) pair
// identified by the session and the bound tenant header.
func (c *Client) MyPermissions(ctx context.Context) ([]string, error) {
	headers, err := tenantHeaders(ctx)
	if err != nil {
		return nil, err
	}

	var perms []string
	if err := c.http.GetJSON(ctx, c.baseURL+"/my-permissions", headers, &perms); err != nil {
		return nil, fmt.Errorf("fetch permissions: %w", err)
	}
	return perms, nil
}
