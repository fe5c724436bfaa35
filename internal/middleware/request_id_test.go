package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"admingate/internal/logger"
)

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var traceID string
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		traceID = logger.GetTraceID(c.Request.Context())
		c.String(http.StatusOK, RequestIDFrom(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	id := w.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())
	assert.Equal(t, id, traceID, "trace id defaults to the request id")
}

func TestRequestIDHonorsUpstreamHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "upstream-id")
	req.Header.Set(HeaderTraceID, "upstream-trace")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "upstream-id", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "upstream-trace", w.Header().Get(HeaderTraceID))
}
