package guard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"admingate/internal/cache"
	"admingate/internal/metrics"
	"admingate/internal/permission"
	"admingate/internal/route"
	"admingate/internal/session"
	"admingate/internal/tenant"
)

// DirectoryLoader fetches the authenticated user's tenant list. Satisfied by
// apiclient.Client.
type DirectoryLoader interface {
	AvailableTenants(ctx context.Context) ([]tenant.Tenant, error)
}

// PermissionLoader fetches the permission set for the bound tenant.
// Satisfied by permission.Loader.
type PermissionLoader interface {
	Load(ctx context.Context, tenantID int64) (*permission.Set, error)
}

// Initializer drives the tenant-context state machine. It is the single
// writer of the tenant binding and of cache invalidations; everything else
// only reads.
type Initializer struct {
	directory DirectoryLoader
	perms     PermissionLoader
	prefs     session.PreferenceStore
	caches    cache.TenantScoped
	logger    *zap.Logger

	// lastTenant remembers the previously resolved tenant per user so a
	// change can invalidate that tenant's cached query results.
	mu         sync.Mutex
	lastTenant map[string]int64
}

// NewInitializer wires the guard's dependencies. caches may be nil when no
// query cache is configured.
func NewInitializer(directory DirectoryLoader, perms PermissionLoader, prefs session.PreferenceStore, caches cache.TenantScoped, logger *zap.Logger) *Initializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Initializer{
		directory:  directory,
		perms:      perms,
		prefs:      prefs,
		caches:     caches,
		logger:     logger,
		lastTenant: make(map[string]int64),
	}
}

// Result is the outcome of one guard evaluation.
type Result struct {
	// State is the terminal state of the cycle.
	State State
	// Trace lists every state passed through, in order. Tests use it to
	// check the dependency chain; handlers use it for debug logging.
	Trace []StateKind
	// Ctx carries the tenant binding (or its clearance) for downstream
	// calls. Always non-nil.
	Ctx context.Context
}

// Evaluate runs one full initialization cycle for the given path. Each
// navigation re-evaluates from the top with the latest path, so a rapid
// route change simply supersedes the previous cycle.
func (i *Initializer) Evaluate(ctx context.Context, path string) Result {
	r := Result{Ctx: ctx}

	r.enter(StateSessionLoading)
	sess, ok := session.FromContext(ctx)

	switch route.Classify(path) {
	case route.KindAuth:
		// Auth pages render with or without a session; the login page
		// itself must stay reachable.
		r.enter(StateAuthRoute)
		return r.terminal(i, readyBypass())
	case route.KindControl:
		if !ok {
			return r.terminal(i, unauthenticated(route.LoginPath))
		}
		// Platform administration operates across tenants; make sure no
		// tenant id leaks onto its outbound calls.
		r.enter(StateControlRoute)
		r.Ctx = tenant.Clear(r.Ctx)
		return r.terminal(i, readyBypass())
	}

	if !ok {
		return r.terminal(i, unauthenticated(route.LoginPath))
	}

	r.enter(StateTenantsLoading)
	tenants, err := i.directory.AvailableTenants(ctx)
	if err != nil {
		metrics.DirectoryFetchFailuresTotal.Inc()
		i.logger.Error("tenant directory fetch failed", zap.Error(err))
		return r.terminal(i, tenantsError(fmt.Errorf("load tenant directory: %w", err)))
	}
	dir := tenant.NewDirectory(tenants)

	savedSlug := i.savedSlug(ctx, sess.UserID)
	resolved := tenant.Resolve(dir, path, savedSlug)
	metrics.TenantResolutionsTotal.WithLabelValues(string(resolved.Source)).Inc()

	state, valid := i.validateTenantRoute(dir, path, resolved)
	if !valid {
		r.Ctx = tenant.Clear(r.Ctx)
		r.enter(state.Kind)
		return r.finish(i, state)
	}

	// Binding must happen before any permission load so the request can
	// never go out with a stale or absent tenant header.
	r.Ctx = tenant.Bind(r.Ctx, tenant.Binding{TenantID: resolved.Tenant.ID, Slug: resolved.Tenant.Slug})
	i.noteTenantChange(ctx, sess.UserID, resolved.Tenant.ID)

	if sess.SuperAdmin() {
		// Permission data is never loaded for super-admins; the gate
		// short-circuits every check to true anyway.
		return r.terminal(i, ready(resolved, nil))
	}

	if !i.shouldLoadPermissions(r.Ctx, path, resolved) {
		return r.terminal(i, ready(resolved, nil))
	}

	r.enter(StatePermissionsLoading)
	set, err := i.perms.Load(r.Ctx, resolved.Tenant.ID)
	if err != nil {
		metrics.PermissionFetchFailuresTotal.Inc()
		i.logger.Error("permission fetch failed",
			zap.Int64("tenant_id", resolved.Tenant.ID),
			zap.Error(err),
		)
		return r.terminal(i, permissionsError(resolved, fmt.Errorf("load permissions: %w", err)))
	}

	return r.terminal(i, ready(resolved, set))
}

// validateTenantRoute checks a tenant-scoped route against the directory.
// A path without a slug segment (the console root) is valid as long as some
// tenant resolved; a present slug must match the resolved tenant exactly,
// and the resolved tenant must be a directory member by id — an
// authorization check, not just a lookup.
func (i *Initializer) validateTenantRoute(dir *tenant.Directory, path string, resolved tenant.ResolvedContext) (State, bool) {
	if resolved.Tenant == nil {
		i.logger.Warn("no tenant available for tenant-scoped route", zap.String("path", path))
		metrics.GuardRedirectsTotal.WithLabelValues("no_tenant").Inc()
		return noTenant(route.LoginPath), false
	}

	urlSlug := tenant.PathSlug(path)
	if urlSlug != "" && urlSlug != resolved.Tenant.Slug {
		target := route.DashboardPath(resolved.Tenant.Slug)
		i.logger.Warn("invalid tenant route",
			zap.String("path", path),
			zap.String("url_slug", urlSlug),
			zap.String("resolved_slug", resolved.Tenant.Slug),
			zap.String("redirect", target),
		)
		metrics.GuardRedirectsTotal.WithLabelValues("invalid_route").Inc()
		return routeInvalid(resolved, target), false
	}

	if !dir.Contains(resolved.Tenant.ID) {
		i.logger.Warn("resolved tenant not authorized",
			zap.Int64("tenant_id", resolved.Tenant.ID),
			zap.String("path", path),
		)
		metrics.GuardRedirectsTotal.WithLabelValues("invalid_route").Inc()
		return routeInvalid(resolved, route.LoginPath), false
	}

	return State{}, true
}

// shouldLoadPermissions gates the permission fetch on every precondition
// holding at once: tenant bound, resolved id present, route tenant-scoped.
func (i *Initializer) shouldLoadPermissions(ctx context.Context, path string, resolved tenant.ResolvedContext) bool {
	if !route.RequiresTenantContext(path) {
		return false
	}
	if resolved.Tenant == nil {
		return false
	}
	b, ok := tenant.BindingFromContext(ctx)
	return ok && b.TenantID == resolved.Tenant.ID
}

// savedSlug reads the user's saved tenant preference, treating "never
// selected" as empty.
func (i *Initializer) savedSlug(ctx context.Context, userID string) string {
	if i.prefs == nil {
		return ""
	}
	slug, err := i.prefs.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, session.ErrNoPreference) {
			i.logger.Warn("failed to read tenant preference", zap.String("user_id", userID), zap.Error(err))
		}
		return ""
	}
	return slug
}

// noteTenantChange invalidates the previous tenant's cached query results
// when the resolved tenant changes for a user. The per-tenant namespace
// already prevents cross-tenant reads; this additionally drops data that
// would be stale when the user returns.
func (i *Initializer) noteTenantChange(ctx context.Context, userID string, tenantID int64) {
	i.mu.Lock()
	prev, had := i.lastTenant[userID]
	i.lastTenant[userID] = tenantID
	i.mu.Unlock()

	if !had || prev == tenantID || i.caches == nil {
		return
	}
	if err := i.caches.InvalidateTenant(ctx, prev); err != nil {
		i.logger.Warn("failed to invalidate tenant cache",
			zap.Int64("tenant_id", prev),
			zap.Error(err),
		)
	}
	i.logger.Debug("resolved tenant changed",
		zap.String("user_id", userID),
		zap.Int64("previous", prev),
		zap.Int64("current", tenantID),
	)
}

// enter appends a state to the trace.
func (r *Result) enter(kind StateKind) {
	r.Trace = append(r.Trace, kind)
}

// terminal records the final state (appending it to the trace) and emits the
// state metric.
func (r Result) terminal(i *Initializer, s State) Result {
	r.enter(s.Kind)
	return r.finish(i, s)
}

// finish records the final state without re-appending it to the trace.
func (r Result) finish(i *Initializer, s State) Result {
	r.State = s
	metrics.GuardStatesTotal.WithLabelValues(s.Kind.String()).Inc()
	i.logger.Debug("guard evaluation settled", zap.String("state", s.Kind.String()))
	return r
}
