package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admingate/internal/permission"
	"admingate/internal/route"
	"admingate/internal/session"
	"admingate/internal/tenant"
)

type fakeDirectory struct {
	tenants []tenant.Tenant
	err     error
	calls   int
}

func (f *fakeDirectory) AvailableTenants(ctx context.Context) ([]tenant.Tenant, error) {
	f.calls++
	return f.tenants, f.err
}

type fakePerms struct {
	err   error
	calls int
	// seen records the tenant binding present in the context at the moment
	// of each load.
	seen []tenant.Binding
}

func (f *fakePerms) Load(ctx context.Context, tenantID int64) (*permission.Set, error) {
	f.calls++
	b, _ := tenant.BindingFromContext(ctx)
	f.seen = append(f.seen, b)
	if f.err != nil {
		return nil, f.err
	}
	return &permission.Set{TenantID: tenantID, Permissions: []string{"users.read"}}, nil
}

type fakeCache struct {
	invalidated []int64
}

func (f *fakeCache) Get(ctx context.Context, tenantID int64, key string) ([]byte, error) {
	return nil, errors.New("not cached")
}

func (f *fakeCache) Set(ctx context.Context, tenantID int64, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (f *fakeCache) InvalidateTenant(ctx context.Context, tenantID int64) error {
	f.invalidated = append(f.invalidated, tenantID)
	return nil
}

func testTenants() []tenant.Tenant {
	return []tenant.Tenant{
		{ID: 1, Name: "Acme", Slug: "acme", Status: tenant.StatusActive},
		{ID: 2, Name: "Beta", Slug: "beta", Status: tenant.StatusActive},
	}
}

func sessionCtx(userID string, roles ...string) context.Context {
	return session.WithSession(context.Background(), &session.Session{UserID: userID, Roles: roles})
}

func TestEvaluateUnauthenticated(t *testing.T) {
	init := NewInitializer(&fakeDirectory{}, &fakePerms{}, nil, nil, nil)

	r := init.Evaluate(context.Background(), "/acme/dashboard")

	assert.Equal(t, StateUnauthenticated, r.State.Kind)
	assert.Equal(t, route.LoginPath, r.State.RedirectTo)
}

func TestEvaluateBypassesAuthRoutes(t *testing.T) {
	dir := &fakeDirectory{tenants: testTenants()}
	perms := &fakePerms{}
	init := NewInitializer(dir, perms, nil, nil, nil)

	// No session: the login page itself must stay reachable.
	r := init.Evaluate(context.Background(), "/auth/login")

	assert.Equal(t, StateReady, r.State.Kind)
	assert.Equal(t, 0, dir.calls, "auth routes must not fetch the directory")
	assert.Equal(t, 0, perms.calls)
	assert.Contains(t, r.Trace, StateAuthRoute)
}

func TestEvaluateControlRouteClearsBinding(t *testing.T) {
	init := NewInitializer(&fakeDirectory{tenants: testTenants()}, &fakePerms{}, nil, nil, nil)

	ctx := tenant.Bind(sessionCtx("u1"), tenant.Binding{TenantID: 1, Slug: "acme"})
	r := init.Evaluate(ctx, "/control/tenants")

	assert.Equal(t, StateReady, r.State.Kind)
	_, bound := tenant.BindingFromContext(r.Ctx)
	assert.False(t, bound, "control routes must not carry a tenant id")
}

func TestEvaluateTenantsError(t *testing.T) {
	init := NewInitializer(&fakeDirectory{err: errors.New("backend down")}, &fakePerms{}, nil, nil, nil)

	r := init.Evaluate(sessionCtx("u1"), "/acme/dashboard")

	assert.Equal(t, StateTenantsError, r.State.Kind)
	require.Error(t, r.State.Err)
}

func TestEvaluateBindsBeforePermissionLoad(t *testing.T) {
	perms := &fakePerms{}
	init := NewInitializer(&fakeDirectory{tenants: testTenants()}, perms, nil, nil, nil)

	r := init.Evaluate(sessionCtx("u1"), "/acme/users")

	require.Equal(t, StateReady, r.State.Kind)
	require.Equal(t, 1, perms.calls)
	// The only binding ever observed by the loader is the resolved tenant's.
	assert.Equal(t, tenant.Binding{TenantID: 1, Slug: "acme"}, perms.seen[0])
	assert.Equal(t, []StateKind{
		StateSessionLoading,
		StateTenantsLoading,
		StatePermissionsLoading,
		StateReady,
	}, r.Trace)
}

func TestEvaluateRootPathUsesSavedPreference(t *testing.T) {
	prefs := session.NewMemoryPreferenceStore()
	require.NoError(t, prefs.Set(context.Background(), "u1", "beta"))
	perms := &fakePerms{}
	init := NewInitializer(&fakeDirectory{tenants: testTenants()}, perms, prefs, nil, nil)

	r := init.Evaluate(sessionCtx("u1"), "/")

	require.Equal(t, StateReady, r.State.Kind)
	assert.Equal(t, tenant.SourceSavedPreference, r.State.Resolved.Source)
	assert.Empty(t, r.State.RedirectTo, "a slugless root path is valid, not a redirect")

	b, ok := tenant.BindingFromContext(r.Ctx)
	require.True(t, ok)
	assert.Equal(t, int64(2), b.TenantID)
	assert.Equal(t, "2", b.HeaderValue())
	require.Equal(t, 1, perms.calls)
	assert.Equal(t, int64(2), perms.seen[0].TenantID)
}

func TestEvaluateFallsBackToFirstTenant(t *testing.T) {
	init := NewInitializer(&fakeDirectory{tenants: testTenants()}, &fakePerms{}, nil, nil, nil)

	r := init.Evaluate(sessionCtx("u1"), "/")

	require.Equal(t, StateReady, r.State.Kind)
	assert.Equal(t, tenant.SourceFirstAvailable, r.State.Resolved.Source)
	b, _ := tenant.BindingFromContext(r.Ctx)
	assert.Equal(t, int64(1), b.TenantID)
}

func TestEvaluateUnknownSlugRedirectsToResolvedDashboard(t *testing.T) {
	tenants := []tenant.Tenant{{ID: 1, Name: "Acme", Slug: "acme", Status: tenant.StatusActive}}
	perms := &fakePerms{}
	init := NewInitializer(&fakeDirectory{tenants: tenants}, perms, nil, nil, nil)

	r := init.Evaluate(sessionCtx("u1"), "/ghost-tenant/users")

	assert.Equal(t, StateRouteInvalid, r.State.Kind)
	assert.Equal(t, "/acme/dashboard", r.State.RedirectTo)
	_, bound := tenant.BindingFromContext(r.Ctx)
	assert.False(t, bound, "no binding may survive an invalid route")
	assert.Equal(t, 0, perms.calls)
}

func TestEvaluateNoTenantRedirectsToLogin(t *testing.T) {
	init := NewInitializer(&fakeDirectory{}, &fakePerms{}, nil, nil, nil)

	r := init.Evaluate(sessionCtx("u1"), "/dashboard")

	assert.Equal(t, StateNoTenant, r.State.Kind)
	assert.Equal(t, route.LoginPath, r.State.RedirectTo)
	_, bound := tenant.BindingFromContext(r.Ctx)
	assert.False(t, bound)
}

func TestEvaluateSuperAdminSkipsPermissionLoad(t *testing.T) {
	perms := &fakePerms{}
	init := NewInitializer(&fakeDirectory{tenants: testTenants()}, perms, nil, nil, nil)

	r := init.Evaluate(sessionCtx("root", session.SuperAdminRole), "/acme/users")

	require.Equal(t, StateReady, r.State.Kind)
	assert.Nil(t, r.State.Permissions)
	assert.Equal(t, 0, perms.calls, "super-admin sessions never fetch permission data")
}

func TestEvaluatePermissionsError(t *testing.T) {
	perms := &fakePerms{err: errors.New("backend down")}
	init := NewInitializer(&fakeDirectory{tenants: testTenants()}, perms, nil, nil, nil)

	r := init.Evaluate(sessionCtx("u1"), "/acme/users")

	assert.Equal(t, StatePermissionsError, r.State.Kind)
	require.Error(t, r.State.Err)
	// Tenant context survives a permission failure so a retry can reuse it.
	b, ok := tenant.BindingFromContext(r.Ctx)
	require.True(t, ok)
	assert.Equal(t, int64(1), b.TenantID)
}

func TestEvaluateTenantSwitchInvalidatesPreviousCache(t *testing.T) {
	caches := &fakeCache{}
	init := NewInitializer(&fakeDirectory{tenants: testTenants()}, &fakePerms{}, nil, caches, nil)

	ctx := sessionCtx("u1")
	r := init.Evaluate(ctx, "/acme/users")
	require.Equal(t, StateReady, r.State.Kind)
	assert.Empty(t, caches.invalidated)

	r = init.Evaluate(ctx, "/beta/users")
	require.Equal(t, StateReady, r.State.Kind)
	assert.Equal(t, []int64{1}, caches.invalidated)

	// Same tenant again: nothing to invalidate.
	r = init.Evaluate(ctx, "/beta/reports")
	require.Equal(t, StateReady, r.State.Kind)
	assert.Equal(t, []int64{1}, caches.invalidated)
}

func TestEvaluateMismatchedSlugWins(t *testing.T) {
	// A URL slug always beats the saved preference; a mismatch between the
	// two is a redirect to the URL tenant only if the URL tenant exists.
	prefs := session.NewMemoryPreferenceStore()
	require.NoError(t, prefs.Set(context.Background(), "u1", "beta"))
	init := NewInitializer(&fakeDirectory{tenants: testTenants()}, &fakePerms{}, prefs, nil, nil)

	r := init.Evaluate(sessionCtx("u1"), "/acme/users")

	require.Equal(t, StateReady, r.State.Kind)
	assert.Equal(t, tenant.SourceURL, r.State.Resolved.Source)
	b, _ := tenant.BindingFromContext(r.Ctx)
	assert.Equal(t, "acme", b.Slug)
}
