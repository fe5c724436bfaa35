// Package auth exposes the session lifecycle: login, logout and tenant
// selection. All routes here bypass tenant context.
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"admingate/internal/apiclient"
	"admingate/internal/cache"
	"admingate/internal/metrics"
	"admingate/internal/session"
	"admingate/internal/tenant"
)

// Handler serves the /auth routes.
type Handler struct {
	backend  *apiclient.Client
	sessions *session.Service
	prefs    session.PreferenceStore
	caches   cache.TenantScoped
	logger   *zap.Logger
}

// NewHandler wires the auth routes' dependencies. caches may be nil.
func NewHandler(backend *apiclient.Client, sessions *session.Service, prefs session.PreferenceStore, caches cache.TenantScoped, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{backend: backend, sessions: sessions, prefs: prefs, caches: caches, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials against the backend identity service and
// issues a session token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login request"})
		return
	}

	identity, err := h.backend.VerifyCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("credential check failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.sessions.Issue(identity.UserID, identity.Roles)
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout revokes the current session token and clears the saved tenant
// preference so the next login starts from a clean resolution.
func (h *Handler) Logout(c *gin.Context) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.sessions.Revoke(c.Request.Context(), sess.Token); err != nil {
		h.logger.Warn("failed to revoke token", zap.Error(err))
	}
	if h.prefs != nil {
		if err := h.prefs.Clear(c.Request.Context(), sess.UserID); err != nil {
			h.logger.Warn("failed to clear tenant preference", zap.String("user_id", sess.UserID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// Tenants lists the tenants the current user may select.
func (h *Handler) Tenants(c *gin.Context) {
	_, ok := session.FromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	tenants, err := h.backend.AvailableTenants(c.Request.Context())
	if err != nil {
		h.logger.Error("tenant list fetch failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load your tenants", "retry": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

type switchRequest struct {
	Slug string `json:"slug" binding:"required"`
}

// SwitchTenant saves a new tenant preference and invalidates the cached
// data of the tenant being left. The next navigation resolves the new
// tenant through the normal pipeline.
func (h *Handler) SwitchTenant(c *gin.Context) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req switchRequest
	if err := c.ShouldBindJSON(&req); err != nil || !tenant.ValidSlug(req.Slug) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant slug"})
		return
	}

	tenants, err := h.backend.AvailableTenants(c.Request.Context())
	if err != nil {
		h.logger.Error("tenant list fetch failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load your tenants", "retry": true})
		return
	}
	dir := tenant.NewDirectory(tenants)

	target, found := dir.BySlug(req.Slug)
	if !found {
		c.JSON(http.StatusForbidden, gin.H{"error": "tenant not available"})
		return
	}

	var prevSlug string
	if h.prefs != nil {
		prevSlug, _ = h.prefs.Get(c.Request.Context(), sess.UserID)
		if err := h.prefs.Set(c.Request.Context(), sess.UserID, target.Slug); err != nil {
			h.logger.Error("failed to save tenant preference", zap.String("user_id", sess.UserID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save selection"})
			return
		}
	}

	if h.caches != nil && prevSlug != "" && prevSlug != target.Slug {
		if prev, ok := dir.BySlug(prevSlug); ok {
			// Best effort; namespacing already prevents cross-tenant reads.
			_ = h.caches.InvalidateTenant(c.Request.Context(), prev.ID)
		}
	}

	metrics.TenantSwitchesTotal.Inc()
	h.logger.Info("tenant switched",
		zap.String("user_id", sess.UserID),
		zap.String("slug", target.Slug),
		zap.Int64("tenant_id", target.ID),
	)

	c.JSON(http.StatusOK, gin.H{
		"tenant":   target,
		"redirect": "/" + target.Slug + "/dashboard",
	})
}
