package guard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"admingate/internal/permission"
	"admingate/internal/session"
)

const (
	stateKey   = "guard_state"
	sessionKey = "guard_session"
)

// Authenticate parses the bearer token, if any, and attaches the session to
// the request context. It never rejects by itself; the guard decides what an
// absent session means for the current route.
func Authenticate(sessions *session.Service, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		sess, err := sessions.Parse(c.Request.Context(), session.ExtractBearer(header))
		if err != nil {
			logger.Warn("rejected bearer token", zap.Error(err))
			c.Next()
			return
		}

		c.Set(sessionKey, sess)
		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
		c.Next()
	}
}

// Middleware runs the initializer for every request and converts its
// terminal state into HTTP behavior: pass-through on Ready, a redirect for
// recoverable navigation errors, and an inline error payload with a retry
// affordance for fetch failures. Protected handlers only ever run in Ready.
func Middleware(init *Initializer) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := init.Evaluate(c.Request.Context(), c.Request.URL.Path)

		switch result.State.Kind {
		case StateReady:
			c.Request = c.Request.WithContext(result.Ctx)
			c.Set(stateKey, result.State)
			c.Next()

		case StateUnauthenticated, StateRouteInvalid, StateNoTenant:
			c.Redirect(http.StatusFound, result.State.RedirectTo)
			c.Abort()

		case StateTenantsError:
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"error": "failed to load your tenants",
				"state": result.State.Kind.String(),
				"retry": true,
			})

		case StatePermissionsError:
			// Tenant context is still valid; only the permissions step is
			// degraded.
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"error": "failed to load your permissions",
				"state": result.State.Kind.String(),
				"retry": true,
			})

		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "tenant context initialization did not settle",
				"state": result.State.Kind.String(),
			})
		}
	}
}

// StateFrom returns the guard state stored for the current request.
func StateFrom(c *gin.Context) (State, bool) {
	v, ok := c.Get(stateKey)
	if !ok {
		return State{}, false
	}
	s, ok := v.(State)
	return s, ok
}

// GateFrom builds the permission gate for the current request from the
// session and the loaded permission set. Safe to call on any route; outside
// Ready it returns a deny-all gate.
func GateFrom(c *gin.Context) *permission.Gate {
	sess, _ := session.FromContext(c.Request.Context())
	state, _ := StateFrom(c)
	return permission.NewGate(sess, state.Permissions)
}
