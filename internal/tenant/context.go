package tenant

import (
	"context"
	"strconv"
)

// Header is the out-of-band tenant identifier attached to every outbound
// tenant-scoped backend call.
const Header = "X-Tenant-Id"

// Binding carries the bound tenant identity through the request lifecycle.
// It replaces the original console's process-global header variable: the
// binding is attached to a context.Context once by the guard and read by the
// outbound transport, so there is no shared mutable state to race on.
type Binding struct {
	TenantID int64
	Slug     string
}

// HeaderValue renders the bound tenant id as it appears on the wire.
func (b Binding) HeaderValue() string {
	return strconv.FormatInt(b.TenantID, 10)
}

type bindingKey struct{}

// Bind attaches the given tenant binding to the context. The guard calls
// this exactly once per navigation, after route validation and before any
// permission load.
func Bind(ctx context.Context, b Binding) context.Context {
	return context.WithValue(ctx, bindingKey{}, b)
}

// Clear returns a context with no tenant binding. Control routes and failed
// validations go through here so no stale tenant id leaks onto later calls.
func Clear(ctx context.Context) context.Context {
	return context.WithValue(ctx, bindingKey{}, nil)
}

// BindingFromContext retrieves the tenant binding, if one is set.
func BindingFromContext(ctx context.Context) (Binding, bool) {
	v := ctx.Value(bindingKey{})
	if v == nil {
		return Binding{}, false
	}
	b, ok := v.(Binding)
	if !ok {
		return Binding{}, false
	}
	return b, true
}

// MustBinding retrieves the tenant binding and panics if it is missing. Use
// only where the guard has already guaranteed a bound tenant; absence there
// is a programming error.
func MustBinding(ctx context.Context) Binding {
	b, ok := BindingFromContext(ctx)
	if !ok {
		panic("tenant: Binding missing from context")
	}
	return b
}
