package permission

import (
	"context"
	"errors"
	"testing"
	"time"

	"admingate/internal/cache"
	"admingate/internal/session"
	"admingate/internal/tenant"
)

type fakeFetcher struct {
	perms  []string
	err    error
	calls  int
	onCall func(ctx context.Context)
}

func (f *fakeFetcher) MyPermissions(ctx context.Context) ([]string, error) {
	f.calls++
	if f.onCall != nil {
		f.onCall(ctx)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.perms, nil
}

func boundCtx(tenantID int64) context.Context {
	ctx := session.WithSession(context.Background(), &session.Session{UserID: "u1", Token: "tok"})
	return tenant.Bind(ctx, tenant.Binding{TenantID: tenantID, Slug: "acme"})
}

func TestLoaderFetchesAndTagsTenant(t *testing.T) {
	fetcher := &fakeFetcher{perms: []string{"users.read"}}
	loader := NewLoader(fetcher, cache.NewMemoryScoped(), time.Minute, nil)

	set, err := loader.Load(boundCtx(5), 5)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.TenantID != 5 {
		t.Fatalf("set.TenantID = %d", set.TenantID)
	}
	if len(set.Permissions) != 1 || set.Permissions[0] != "users.read" {
		t.Fatalf("permissions = %v", set.Permissions)
	}
}

func TestLoaderRefusesMismatchedBinding(t *testing.T) {
	fetcher := &fakeFetcher{perms: []string{"users.read"}}
	loader := NewLoader(fetcher, nil, time.Minute, nil)

	// Bound to tenant 9 but asked to load for tenant 5: the navigation that
	// wanted tenant 5 has been superseded.
	_, err := loader.Load(boundCtx(9), 5)
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("err = %v, want ErrSuperseded", err)
	}
	if fetcher.calls != 0 {
		t.Fatalf("fetch issued despite mismatched binding")
	}
}

func TestLoaderCachesPerTenant(t *testing.T) {
	fetcher := &fakeFetcher{perms: []string{"users.read"}}
	store := cache.NewMemoryScoped()
	loader := NewLoader(fetcher, store, time.Minute, nil)

	if _, err := loader.Load(boundCtx(5), 5); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if _, err := loader.Load(boundCtx(5), 5); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("calls = %d, want 1 (second load served from cache)", fetcher.calls)
	}

	// A different tenant must trigger a fresh fetch, never a cross-tenant
	// cache read.
	if _, err := loader.Load(boundCtx(6), 6); err != nil {
		t.Fatalf("Load for tenant 6: %v", err)
	}
	if fetcher.calls != 2 {
		t.Fatalf("calls = %d, want 2", fetcher.calls)
	}
}

func TestLoaderInvalidateForcesReload(t *testing.T) {
	fetcher := &fakeFetcher{perms: []string{"users.read"}}
	store := cache.NewMemoryScoped()
	loader := NewLoader(fetcher, store, time.Minute, nil)
	ctx := boundCtx(5)

	loader.Load(ctx, 5)
	if err := loader.Invalidate(ctx, 5); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	loader.Load(ctx, 5)

	if fetcher.calls != 2 {
		t.Fatalf("calls = %d, want 2 (invalidate must force a reload)", fetcher.calls)
	}
}

func TestLoaderPropagatesFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("backend down")}
	loader := NewLoader(fetcher, nil, time.Minute, nil)

	if _, err := loader.Load(boundCtx(5), 5); err == nil {
		t.Fatalf("expected fetch error")
	}
}
