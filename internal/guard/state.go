// Package guard orchestrates tenant-context initialization for every
// console navigation: session check, directory load, tenant resolution,
// route validation, header binding, and permission loading, in that strict
// order. Nothing tenant-scoped renders until the guard reaches Ready.
package guard

import (
	"admingate/internal/permission"
	"admingate/internal/tenant"
)

// StateKind enumerates the initializer states. Exactly one holds at any
// point in an evaluation.
type StateKind int

const (
	// StateSessionLoading: waiting on session resolution.
	StateSessionLoading StateKind = iota
	// StateUnauthenticated: session settled with no identity; terminal for
	// this cycle, the caller lands on the login page.
	StateUnauthenticated
	// StateAuthRoute: route under /auth, bypasses the pipeline.
	StateAuthRoute
	// StateControlRoute: route under /control, bypasses the pipeline with
	// the tenant binding cleared.
	StateControlRoute
	// StateTenantsLoading: waiting on the tenant directory fetch.
	StateTenantsLoading
	// StateTenantsError: directory fetch failed; terminal until retried.
	StateTenantsError
	// StateRouteInvalid: URL slug unknown, mismatched, or unauthorized;
	// triggers a recovery redirect.
	StateRouteInvalid
	// StateNoTenant: no tenant could be resolved at all.
	StateNoTenant
	// StatePermissionsLoading: tenant bound, waiting on the permission
	// fetch.
	StatePermissionsLoading
	// StatePermissionsError: permission fetch failed; tenant context stays
	// valid, terminal until retried.
	StatePermissionsError
	// StateReady: all preconditions satisfied, protected content may render.
	StateReady
)

var stateNames = map[StateKind]string{
	StateSessionLoading:     "session-loading",
	StateUnauthenticated:    "unauthenticated",
	StateAuthRoute:          "auth-route",
	StateControlRoute:       "control-route",
	StateTenantsLoading:     "tenants-loading",
	StateTenantsError:       "tenants-error",
	StateRouteInvalid:       "route-invalid",
	StateNoTenant:           "no-tenant",
	StatePermissionsLoading: "permissions-loading",
	StatePermissionsError:   "permissions-error",
	StateReady:              "ready",
}

func (k StateKind) String() string {
	if name, ok := stateNames[k]; ok {
		return name
	}
	return "unknown"
}

// State is the initializer's tagged union. Which fields are meaningful
// depends on Kind; constructors below keep the combinations legal.
type State struct {
	Kind StateKind

	// Err carries the failure for TenantsError and PermissionsError.
	Err error

	// RedirectTo is the recovery target for Unauthenticated, RouteInvalid,
	// and NoTenant.
	RedirectTo string

	// Resolved is populated once resolution has run.
	Resolved tenant.ResolvedContext

	// Permissions is populated in Ready for tenant-scoped routes (nil for
	// bypass routes and super-admin sessions).
	Permissions *permission.Set
}

// Terminal reports whether the state ends the evaluation cycle.
func (s State) Terminal() bool {
	switch s.Kind {
	case StateUnauthenticated, StateTenantsError, StateRouteInvalid,
		StateNoTenant, StatePermissionsError, StateReady:
		return true
	default:
		return false
	}
}

// Redirects reports whether the state carries a recovery redirect.
func (s State) Redirects() bool {
	return s.RedirectTo != ""
}

func unauthenticated(target string) State {
	return State{Kind: StateUnauthenticated, RedirectTo: target}
}

func readyBypass() State {
	return State{Kind: StateReady, Resolved: tenant.ResolvedContext{Source: tenant.SourceNone}}
}

func tenantsError(err error) State {
	return State{Kind: StateTenantsError, Err: err}
}

func routeInvalid(resolved tenant.ResolvedContext, target string) State {
	return State{Kind: StateRouteInvalid, Resolved: resolved, RedirectTo: target}
}

func noTenant(target string) State {
	return State{Kind: StateNoTenant, Resolved: tenant.ResolvedContext{Source: tenant.SourceNone}, RedirectTo: target}
}

func permissionsError(resolved tenant.ResolvedContext, err error) State {
	return State{Kind: StatePermissionsError, Resolved: resolved, Err: err}
}

func ready(resolved tenant.ResolvedContext, perms *permission.Set) State {
	return State{Kind: StateReady, Resolved: resolved, Permissions: perms}
}
