package permission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"admingate/internal/cache"
	"admingate/internal/session"
	"admingate/internal/tenant"
)

// ErrSuperseded is returned when a load completes for a tenant that is no
// longer the bound one. The caller must drop the result; the newest
// resolution always wins.
var ErrSuperseded = errors.New("permission: load superseded by tenant change")

// Fetcher performs the backend permission call. Satisfied by
// apiclient.Client.
type Fetcher interface {
	MyPermissions(ctx context.Context) ([]string, error)
}

// Loader fetches permission sets scoped to the bound tenant, caching them in
// the tenant-scoped cache so a switch wipes them wholesale.
type Loader struct {
	fetcher Fetcher
	cache   cache.TenantScoped
	ttl     time.Duration
	logger  *zap.Logger
}

// NewLoader creates a Loader. cache may be nil to disable caching.
func NewLoader(fetcher Fetcher, c cache.TenantScoped, ttl time.Duration, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Loader{fetcher: fetcher, cache: c, ttl: ttl, logger: logger}
}

// Load returns the permission set for the tenant bound on ctx. The set is
// tagged with the tenant id it was fetched under; if the binding changed
// between the request and now (concurrent navigation), the result is
// discarded with ErrSuperseded instead of being applied under the wrong
// tenant.
func (l *Loader) Load(ctx context.Context, tenantID int64) (*Set, error) {
	b, ok := tenant.BindingFromContext(ctx)
	if !ok || b.TenantID != tenantID {
		return nil, ErrSuperseded
	}

	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, errors.New("permission: no session on context")
	}

	cacheKey := "permissions:" + sess.UserID
	if l.cache != nil {
		if raw, err := l.cache.Get(ctx, tenantID, cacheKey); err == nil {
			var perms []string
			if err := json.Unmarshal(raw, &perms); err == nil {
				return &Set{TenantID: tenantID, Permissions: perms}, nil
			}
			// Unreadable entry; fall through to a fresh fetch.
		}
	}

	perms, err := l.fetcher.MyPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load permissions for tenant %d: %w", tenantID, err)
	}

	// Re-check after the fetch settles: a rapid navigation may have rebound
	// the tenant while the request was in flight.
	if b, ok := tenant.BindingFromContext(ctx); !ok || b.TenantID != tenantID {
		return nil, ErrSuperseded
	}

	if l.cache != nil {
		if raw, err := json.Marshal(perms); err == nil {
			if err := l.cache.Set(ctx, tenantID, cacheKey, raw, l.ttl); err != nil {
				l.logger.Warn("failed to cache permission set",
					zap.Int64("tenant_id", tenantID),
					zap.Error(err),
				)
			}
		}
	}

	return &Set{TenantID: tenantID, Permissions: perms}, nil
}

// Invalidate drops every cached permission set for the tenant. Called on
// explicit tenant switch.
func (l *Loader) Invalidate(ctx context.Context, tenantID int64) error {
	if l.cache == nil {
		return nil
	}
	return l.cache.InvalidateTenant(ctx, tenantID)
}
