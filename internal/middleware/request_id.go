package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"admingate/internal/logger"
)

const (
	// HeaderRequestID carries the request id, accepted from upstream
	// proxies and echoed back on the response.
	HeaderRequestID = "X-Request-ID"
	// HeaderTraceID carries the trace id across services.
	HeaderTraceID = "X-Trace-ID"

	requestIDKey = "request_id"
)

// RequestID assigns every request a unique id and a trace id, stores
// them on the gin context and the request context, and echoes them back
// in the response headers. The trace id feeds logger.WithContext.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = requestID
		}

		c.Set(requestIDKey, requestID)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}

// RequestIDFrom returns the request id assigned to this request, empty
// if the middleware did not run.
func RequestIDFrom(c *gin.Context) string {
	if id, exists := c.Get(requestIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
