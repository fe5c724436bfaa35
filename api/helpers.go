package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admingate/internal/infra"
)

// HealthCheck reports basic liveness for monitoring probes.
func HealthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "admingate",
		})
	}
}

// ReadinessCheck reports whether the gateway can serve requests, which
// requires a reachable redis.
func ReadinessCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := infra.HealthCheckRedis(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"reason": "redis unavailable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
