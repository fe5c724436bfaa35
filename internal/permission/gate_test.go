package permission

import (
	"testing"

	"admingate/internal/session"
)

func viewerSession() *session.Session {
	return &session.Session{UserID: "u1", Roles: []string{"viewer"}}
}

func TestGateDeniesWithoutSession(t *testing.T) {
	g := NewGate(nil, &Set{TenantID: 1, Permissions: []string{"users.read"}})

	if g.HasPermission("users.read") {
		t.Errorf("HasPermission without session")
	}
	if g.HasAnyPermission("users.read") {
		t.Errorf("HasAnyPermission without session")
	}
	if g.HasAllPermissions() {
		t.Errorf("HasAllPermissions without session")
	}
	if g.CanAccess("users") {
		t.Errorf("CanAccess without session")
	}
	if g.HasRole("viewer") {
		t.Errorf("HasRole without session")
	}
}

func TestGateExactPermission(t *testing.T) {
	g := NewGate(viewerSession(), &Set{TenantID: 1, Permissions: []string{"users.read", "billing.view"}})

	if !g.HasPermission("users.read") {
		t.Errorf("users.read should be granted")
	}
	if g.HasPermission("users.write") {
		t.Errorf("users.write should be denied")
	}
}

func TestGateQuantifiers(t *testing.T) {
	g := NewGate(viewerSession(), &Set{TenantID: 1, Permissions: []string{"users.read", "billing.view"}})

	if !g.HasAnyPermission("users.write", "billing.view") {
		t.Errorf("HasAnyPermission should pass with one match")
	}
	if g.HasAnyPermission("users.write", "roles.manage") {
		t.Errorf("HasAnyPermission should fail with no match")
	}
	if !g.HasAllPermissions("users.read", "billing.view") {
		t.Errorf("HasAllPermissions should pass when all present")
	}
	if g.HasAllPermissions("users.read", "users.write") {
		t.Errorf("HasAllPermissions should fail with one missing")
	}
}

func TestGateCanAccessResourcePrefix(t *testing.T) {
	g := NewGate(viewerSession(), &Set{TenantID: 1, Permissions: []string{"users.read"}})

	if !g.CanAccess("users") {
		t.Errorf("CanAccess(users) should pass via prefix")
	}
	if g.CanAccess("billing") {
		t.Errorf("CanAccess(billing) should fail")
	}
	if !g.CanAccess("users", "read") {
		t.Errorf("CanAccess(users, read) should pass")
	}
	if g.CanAccess("users", "write") {
		t.Errorf("CanAccess(users, write) should fail")
	}
}

func TestGateSuperAdminBypassesEverything(t *testing.T) {
	sess := &session.Session{UserID: "root", Roles: []string{session.SuperAdminRole}}
	// Deliberately empty permission set: super_admin never loads one.
	g := NewGate(sess, nil)

	if !g.HasPermission("anything.anything") {
		t.Errorf("super_admin HasPermission")
	}
	if !g.HasAnyPermission("x.y") {
		t.Errorf("super_admin HasAnyPermission")
	}
	if !g.HasAllPermissions("x.y", "z.w") {
		t.Errorf("super_admin HasAllPermissions")
	}
	if !g.CanAccess("whatever") {
		t.Errorf("super_admin CanAccess")
	}
}

func TestGateHasRole(t *testing.T) {
	g := NewGate(viewerSession(), nil)
	if !g.HasRole("viewer") {
		t.Errorf("HasRole(viewer)")
	}
	if g.HasRole("admin") {
		t.Errorf("HasRole(admin) should be false")
	}
}
