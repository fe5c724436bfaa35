package route

import (
	"strings"

	"admingate/internal/tenant"
)

// CurrentTenantSlug extracts the first path segment of a tenant-scoped path,
// or "" when the path is global or has no segment.
func CurrentTenantSlug(pathname string) string {
	if !RequiresTenantContext(pathname) {
		return ""
	}
	return tenant.PathSlug(pathname)
}

// BuildTenantPath prefixes path with a tenant slug: BuildTenantPath("acme",
// "users") and BuildTenantPath("acme", "/users") both yield "/acme/users".
func BuildTenantPath(slug, path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "/" + slug
	}
	return "/" + slug + "/" + trimmed
}

// DashboardPath is the canonical landing page for a tenant, used as the
// redirect target after recovering from an invalid route.
func DashboardPath(slug string) string {
	return BuildTenantPath(slug, DashboardSegment)
}

// NavigateOptions controls tenant-aware navigation.
type NavigateOptions struct {
	// Global skips tenant prefixing; the path is used as-is.
	Global bool
}

// Navigate computes the target location for a navigation request. For
// non-global navigations the path is prefixed with the resolved tenant's
// slug; global navigations and already-global paths pass through untouched.
func Navigate(resolved tenant.ResolvedContext, path string, opts NavigateOptions) string {
	if opts.Global || !RequiresTenantContext(path) {
		return normalize(path)
	}
	if resolved.Tenant == nil {
		return LoginPath
	}
	return BuildTenantPath(resolved.Tenant.Slug, path)
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
