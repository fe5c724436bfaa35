// Package permission derives boolean access decisions from the permission
// set loaded for the current (user, tenant) pair. Permission strings follow
// the "<resource>.<action>" convention.
package permission

import (
	"strings"

	"admingate/internal/session"
)

// Set is the permission list loaded for one (user, tenant) pair. TenantID
// records which tenant the set was fetched under; consumers must discard a
// Set whose tenant no longer matches the current resolution.
type Set struct {
	TenantID    int64
	Permissions []string
}

// Gate answers permission questions for one authenticated session against
// one loaded Set. A nil session denies everything; the super_admin role
// allows everything without consulting the set (deliberate platform
// behavior).
type Gate struct {
	sess  *session.Session
	perms map[string]struct{}
}

// NewGate builds a gate from a session and its loaded permission set. Either
// argument may be nil.
func NewGate(sess *session.Session, set *Set) *Gate {
	g := &Gate{sess: sess, perms: make(map[string]struct{})}
	if set != nil {
		for _, p := range set.Permissions {
			g.perms[p] = struct{}{}
		}
	}
	return g
}

// HasPermission reports whether the exact permission string is granted.
func (g *Gate) HasPermission(name string) bool {
	if g.sess == nil {
		return false
	}
	if g.sess.SuperAdmin() {
		return true
	}
	_, ok := g.perms[name]
	return ok
}

// HasAnyPermission reports whether at least one of the names is granted.
func (g *Gate) HasAnyPermission(names ...string) bool {
	if g.sess == nil {
		return false
	}
	if g.sess.SuperAdmin() {
		return true
	}
	for _, name := range names {
		if _, ok := g.perms[name]; ok {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every name is granted.
func (g *Gate) HasAllPermissions(names ...string) bool {
	if g.sess == nil {
		return false
	}
	if g.sess.SuperAdmin() {
		return true
	}
	for _, name := range names {
		if _, ok := g.perms[name]; !ok {
			return false
		}
	}
	return true
}

// CanAccess checks "<resource>.<action>". With no action it reports whether
// any permission for the resource is granted, which is what navigation
// filtering needs to decide if a section is visible at all.
func (g *Gate) CanAccess(resource string, action ...string) bool {
	if g.sess == nil {
		return false
	}
	if g.sess.SuperAdmin() {
		return true
	}
	if len(action) > 0 && action[0] != "" {
		return g.HasPermission(resource + "." + action[0])
	}
	prefix := resource + "."
	for p := range g.perms {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// HasRole reports whether the session holds the named role.
func (g *Gate) HasRole(role string) bool {
	if g.sess == nil {
		return false
	}
	return g.sess.HasRole(role)
}
