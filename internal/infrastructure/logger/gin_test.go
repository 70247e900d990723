package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newLoggedRouter(t *testing.T, level zapcore.Level) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(level)
	zl := zap.New(core)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-123")
		c.Next()
	})
	r.Use(Recovery(zl), GinMiddleware(zl))
	return r, recorded
}

func findHTTPLog(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	return entries[0]
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs level by status", func(t *testing.T) {
		tests := []struct {
			status int
			level  zapcore.Level
		}{
			{http.StatusOK, zapcore.InfoLevel},
			{http.StatusNotFound, zapcore.WarnLevel},
			{http.StatusInternalServerError, zapcore.ErrorLevel},
		}
		for _, tt := range tests {
			r, recorded := newLoggedRouter(t, zapcore.DebugLevel)
			r.GET("/x", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x?page=2", nil))

			entry := findHTTPLog(t, recorded)
			assert.Equal(t, tt.level, entry.Level)
			fields := entry.ContextMap()
			assert.Equal(t, "req-123", fields["request_id"])
			assert.Equal(t, "page=2", fields["query"])
			assert.EqualValues(t, tt.status, fields["status"])
		}
	})

	t.Run("request context carries the logger", func(t *testing.T) {
		r, recorded := newLoggedRouter(t, zapcore.InfoLevel)
		r.GET("/x", func(c *gin.Context) {
			assert.Equal(t, "req-123", GetRequestID(c.Request.Context()))
			L(c.Request.Context()).Info("inside handler")
			assert.NotNil(t, GetGinLogger(c))
			c.Status(http.StatusNoContent)
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

		entries := recorded.FilterMessage("inside handler").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	})
}

func TestRecovery(t *testing.T) {
	r, recorded := newLoggedRouter(t, zapcore.ErrorLevel)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestGetGinLogger_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
