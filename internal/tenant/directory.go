package tenant

import "errors"

// ErrNotFound is returned when a lookup misses the directory.
var ErrNotFound = errors.New("tenant: not found")

// Directory holds the authenticated user's authorized tenants in backend
// order. It is populated after authentication, considered stale once the
// session is invalidated, and refetched on demand. An empty directory is a
// valid terminal state: the user simply has no tenants.
type Directory struct {
	tenants []Tenant
	byID    map[int64]int
	bySlug  map[string]int
}

// NewDirectory builds a Directory from the backend's tenant list, preserving
// order. Ids and slugs are unique by backend contract; should a duplicate
// slip through anyway, the first occurrence wins every lookup so resolution
// stays deterministic.
func NewDirectory(tenants []Tenant) *Directory {
	d := &Directory{
		tenants: make([]Tenant, len(tenants)),
		byID:    make(map[int64]int, len(tenants)),
		bySlug:  make(map[string]int, len(tenants)),
	}
	copy(d.tenants, tenants)

	for i, t := range d.tenants {
		if _, exists := d.byID[t.ID]; !exists {
			d.byID[t.ID] = i
		}
		if _, exists := d.bySlug[t.Slug]; !exists {
			d.bySlug[t.Slug] = i
		}
	}
	return d
}

// Empty reports whether the user has no tenants.
func (d *Directory) Empty() bool {
	return d == nil || len(d.tenants) == 0
}

// Len returns the number of tenants in the directory.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.tenants)
}

// BySlug looks up a tenant by slug.
func (d *Directory) BySlug(slug string) (*Tenant, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.bySlug[slug]
	if !ok {
		return nil, false
	}
	t := d.tenants[i]
	return &t, true
}

// ByID looks up a tenant by id.
func (d *Directory) ByID(id int64) (*Tenant, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	t := d.tenants[i]
	return &t, true
}

// Contains reports whether the tenant with the given id is authorized for
// the current user. Route validation uses this as the membership check, not
// just a slug lookup.
func (d *Directory) Contains(id int64) bool {
	_, ok := d.ByID(id)
	return ok
}

// First returns the first tenant in backend order.
func (d *Directory) First() (*Tenant, bool) {
	if d.Empty() {
		return nil, false
	}
	t := d.tenants[0]
	return &t, true
}

// All returns a copy of the tenant list in directory order.
func (d *Directory) All() []Tenant {
	if d == nil {
		return nil
	}
	out := make([]Tenant, len(d.tenants))
	copy(out, d.tenants)
	return out
}
