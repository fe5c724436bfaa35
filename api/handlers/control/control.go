// Package control serves the platform administration routes. They run
// behind the guard, which clears any tenant binding before they execute;
// access is limited to super-admin sessions.
package control

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"admingate/internal/apiclient"
	"admingate/internal/session"
)

// Handler serves the /control routes.
type Handler struct {
	backend *apiclient.Client
	logger  *zap.Logger
}

func NewHandler(backend *apiclient.Client, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{backend: backend, logger: logger}
}

// RequireSuperAdmin rejects sessions without the super_admin role.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := session.FromContext(c.Request.Context())
		if !ok || !sess.SuperAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "platform administration requires super_admin"})
			return
		}
		c.Next()
	}
}

// Tenants lists every tenant on the platform.
func (h *Handler) Tenants(c *gin.Context) {
	tenants, err := h.backend.AllTenants(c.Request.Context())
	if err != nil {
		h.logger.Error("platform tenant list fetch failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load tenants", "retry": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}
