package route

import (
	"testing"

	"admingate/internal/tenant"
)

func TestCurrentTenantSlug(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/acme/users", "acme"},
		{"/acme", "acme"},
		{"/", ""},
		{"/auth/login", ""},
		{"/control/tenants", ""},
	}
	for _, tc := range cases {
		if got := CurrentTenantSlug(tc.path); got != tc.want {
			t.Errorf("CurrentTenantSlug(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestBuildTenantPath(t *testing.T) {
	if got := BuildTenantPath("acme", "users"); got != "/acme/users" {
		t.Errorf("got %q", got)
	}
	if got := BuildTenantPath("acme", "/users"); got != "/acme/users" {
		t.Errorf("leading slash: got %q", got)
	}
	if got := BuildTenantPath("acme", ""); got != "/acme" {
		t.Errorf("empty path: got %q", got)
	}
	if got := DashboardPath("beta"); got != "/beta/dashboard" {
		t.Errorf("DashboardPath: got %q", got)
	}
}

func TestNavigatePrefixesTenantSlug(t *testing.T) {
	acme := &tenant.Tenant{ID: 1, Slug: "acme"}
	resolved := tenant.ResolvedContext{Tenant: acme, Source: tenant.SourceURL}

	if got := Navigate(resolved, "users", NavigateOptions{}); got != "/acme/users" {
		t.Errorf("got %q", got)
	}
	if got := Navigate(resolved, "/users", NavigateOptions{Global: true}); got != "/users" {
		t.Errorf("global navigation must not be prefixed: got %q", got)
	}
	if got := Navigate(resolved, "/auth/login", NavigateOptions{}); got != "/auth/login" {
		t.Errorf("auth paths pass through: got %q", got)
	}
}

func TestNavigateWithoutTenantFallsBackToLogin(t *testing.T) {
	none := tenant.ResolvedContext{Source: tenant.SourceNone}
	if got := Navigate(none, "users", NavigateOptions{}); got != LoginPath {
		t.Errorf("got %q, want %q", got, LoginPath)
	}
}
