// Package console serves the tenant-scoped pages. Every route here runs
// behind the guard, so handlers can assume a bound tenant and a loaded
// permission gate.
package console

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"admingate/internal/guard"
	"admingate/internal/route"
	"admingate/internal/tenant"
)

// Handler serves the tenant-scoped console routes.
type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger}
}

// Root redirects the console root to the bound tenant's dashboard.
func (h *Handler) Root(c *gin.Context) {
	b, ok := tenant.BindingFromContext(c.Request.Context())
	if !ok {
		c.Redirect(http.StatusFound, route.LoginPath)
		return
	}
	c.Redirect(http.StatusFound, route.DashboardPath(b.Slug))
}

// Dashboard reports the resolved tenant context and which console
// sections the user may see. The navigation menu is built from this.
func (h *Handler) Dashboard(c *gin.Context) {
	state, _ := guard.StateFrom(c)
	gate := guard.GateFrom(c)

	sections := gin.H{}
	for _, resource := range []string{"users", "billing", "reports", "settings"} {
		sections[resource] = gate.CanAccess(resource)
	}

	c.JSON(http.StatusOK, gin.H{
		"tenant":   state.Resolved.Tenant,
		"source":   state.Resolved.Source,
		"sections": sections,
	})
}

// Users is a permission-gated section page.
func (h *Handler) Users(c *gin.Context) {
	gate := guard.GateFrom(c)
	if !gate.CanAccess("users", "read") {
		c.JSON(http.StatusForbidden, gin.H{"error": "missing permission users.read"})
		return
	}

	b, _ := tenant.BindingFromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"tenant_id": b.TenantID, "section": "users"})
}

// Settings requires an admin role on top of the permission check.
func (h *Handler) Settings(c *gin.Context) {
	gate := guard.GateFrom(c)
	if !gate.HasRole("admin") && !gate.HasAllPermissions("settings.read", "settings.write") {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient access for settings"})
		return
	}

	b, _ := tenant.BindingFromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"tenant_id": b.TenantID, "section": "settings"})
}
