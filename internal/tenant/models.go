package tenant

import "regexp"

// Status describes the lifecycle state of a tenant as reported by the
// platform backend.
type Status string

const (
	StatusActive    Status = "active"
	StatusTrial     Status = "trial"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Tenant is an isolated customer organization. Instances are immutable value
// objects once fetched; the authoritative list lives in the Directory.
type Tenant struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Status Status `json:"status"`
}

// Source records which rule produced a resolved tenant.
type Source string

const (
	SourceURL            Source = "url"
	SourceSavedPreference Source = "saved-preference"
	SourceFirstAvailable Source = "first-available"
	SourceNone           Source = "none"
)

// ResolvedContext is the outcome of tenant resolution for a single
// navigation. It is derived, never stored, and recomputed on every path
// change.
type ResolvedContext struct {
	Tenant *Tenant `json:"tenant"`
	Source Source  `json:"source"`
}

// slugPattern is the wire-level contract for tenant slugs: lowercase
// alphanumerics and hyphens, 3-50 characters, no leading or trailing hyphen.
var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,48}[a-z0-9]$`)

// ValidSlug reports whether s is a well-formed tenant slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
