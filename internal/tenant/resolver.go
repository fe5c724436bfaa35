package tenant

import "strings"

// Resolve maps the current path plus the user's directory (and an optional
// saved slug preference) onto a single tenant. Priority is strict:
//
//  1. the first path segment, when it names a tenant in the directory
//  2. the saved preference, when it names a tenant in the directory
//  3. the first tenant in directory order
//  4. nothing (Tenant == nil, Source == "none")
//
// Resolution is pure and deterministic; callers recompute it on every
// navigation rather than caching the result.
func Resolve(dir *Directory, path string, savedSlug string) ResolvedContext {
	if urlSlug := PathSlug(path); urlSlug != "" {
		if t, ok := dir.BySlug(urlSlug); ok {
			return ResolvedContext{Tenant: t, Source: SourceURL}
		}
	}

	if savedSlug != "" {
		if t, ok := dir.BySlug(savedSlug); ok {
			return ResolvedContext{Tenant: t, Source: SourceSavedPreference}
		}
	}

	if t, ok := dir.First(); ok {
		return ResolvedContext{Tenant: t, Source: SourceFirstAvailable}
	}

	return ResolvedContext{Source: SourceNone}
}

// PathSlug extracts the first path segment as a candidate tenant slug.
// It returns "" for the root path and for segments that do not look like a
// slug at all, so "/auth/login" still yields "auth" and must be filtered by
// the route classifier before resolution.
func PathSlug(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return ""
	}
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}
