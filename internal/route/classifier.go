// Package route classifies console paths and builds tenant-scoped URLs.
// Tenant-scoped routes follow the convention /<tenantSlug>/<rest>; the
// reserved prefixes /auth and /control are global and never carry tenant
// context.
package route

import "strings"

const (
	// AuthPrefix marks authentication routes (login, password reset, ...).
	AuthPrefix = "/auth"
	// ControlPrefix marks platform-administration routes that operate
	// across tenants. Entering one clears any bound tenant.
	ControlPrefix = "/control"

	// LoginPath is the redirect target of last resort.
	LoginPath = "/auth/login"
	// DashboardSegment is the landing page inside a tenant.
	DashboardSegment = "dashboard"
)

// Kind partitions the route space.
type Kind int

const (
	KindTenant Kind = iota
	KindAuth
	KindControl
)

// Classify returns the route kind for a path. Pure, no failure modes.
func Classify(path string) Kind {
	switch {
	case hasPrefixSegment(path, AuthPrefix):
		return KindAuth
	case hasPrefixSegment(path, ControlPrefix):
		return KindControl
	default:
		return KindTenant
	}
}

// RequiresTenantContext reports whether a path needs a resolved tenant
// before its content may render. Auth and control routes bypass the tenant
// pipeline entirely.
func RequiresTenantContext(path string) bool {
	return Classify(path) == KindTenant
}

// hasPrefixSegment matches prefix as a whole path segment, so "/authx/y"
// does not count as an auth route.
func hasPrefixSegment(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/'
}
