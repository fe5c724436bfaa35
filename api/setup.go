package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	authHandlers "admingate/api/handlers/auth"
	consoleHandlers "admingate/api/handlers/console"
	controlHandlers "admingate/api/handlers/control"
	"admingate/internal/apiclient"
	"admingate/internal/cache"
	"admingate/internal/config"
	"admingate/internal/guard"
	"admingate/internal/metrics"
	middlewarepkg "admingate/internal/middleware"
	"admingate/internal/permission"
	"admingate/internal/session"
	"admingate/pkg/httputil"
)

// SetupRouter wires the gateway's dependencies and returns the router.
func SetupRouter(cfg *config.Config, rdb redis.UniversalClient, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	timeout := 15 * time.Second
	if cfg.Upstream.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second
	}
	backend := apiclient.New(cfg.Upstream.BaseURL, apiclient.WithHTTPClient(
		httputil.NewClient(
			httputil.WithTimeout(timeout),
			httputil.WithRetries(cfg.Upstream.MaxRetries),
		),
	))

	sessions := session.NewService(cfg.Session.Secret, cfg.Session.Issuer, rdb)
	prefs := session.NewRedisPreferenceStore(rdb)

	var caches cache.TenantScoped
	if cfg.Cache.Enabled {
		caches = cache.NewRedisScoped(rdb)
	}

	perms := permission.NewLoader(backend, caches, cfg.Cache.PermissionTTLDuration(), logger)
	initializer := guard.NewInitializer(backend, perms, prefs, caches, logger)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middlewarepkg.RequestID(),
		metrics.PrometheusMiddleware(),
		guard.Authenticate(sessions, logger),
	)

	limiter := middlewarepkg.NewRateLimiter(nil)
	router.Use(middlewarepkg.RateLimit(limiter))

	deps := &routeDeps{
		auth:        authHandlers.NewHandler(backend, sessions, prefs, caches, logger),
		console:     consoleHandlers.NewHandler(logger),
		control:     controlHandlers.NewHandler(backend, logger),
		initializer: initializer,
		limiter:     limiter,
	}
	registerRoutes(router, deps)

	return router
}

type routeDeps struct {
	auth        *authHandlers.Handler
	console     *consoleHandlers.Handler
	control     *controlHandlers.Handler
	initializer *guard.Initializer
	limiter     *middlewarepkg.RateLimiter
}

func registerRoutes(router *gin.Engine, deps *routeDeps) {
	router.GET("/health", HealthCheck())
	router.GET("/ready", ReadinessCheck())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", middlewarepkg.RateLimitEndpoint(deps.limiter), deps.auth.Login)
		authGroup.POST("/logout", deps.auth.Logout)
		authGroup.GET("/tenants", deps.auth.Tenants)
		authGroup.POST("/switch-tenant", deps.auth.SwitchTenant)
	}

	controlGroup := router.Group("/control", guard.Middleware(deps.initializer), controlHandlers.RequireSuperAdmin())
	{
		controlGroup.GET("/tenants", deps.control.Tenants)
	}

	guarded := guard.Middleware(deps.initializer)
	router.GET("/", guarded, deps.console.Root)
	tenantGroup := router.Group("/:tenant", guarded)
	{
		tenantGroup.GET("", deps.console.Root)
		tenantGroup.GET("/dashboard", deps.console.Dashboard)
		tenantGroup.GET("/users", deps.console.Users)
		tenantGroup.GET("/settings", deps.console.Settings)
	}
}
