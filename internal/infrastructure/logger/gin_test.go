package logger

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestAccessLog(t *testing.T) {
	t.Run("logs a completed claim request at info", func(t *testing.T) {
		log, logs := newObservedLogger()
		engine := gin.New()
		engine.Use(AccessLog(log))
		engine.GET("/api/v1/claims/:id", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/claims/abc?page=2", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.InfoLevel, entry.Level)
		assert.Equal(t, "request completed", entry.Message)

		fields := entry.ContextMap()
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/api/v1/claims/abc", fields["path"])
		assert.Equal(t, "/api/v1/claims/:id", fields["route"])
		assert.Equal(t, "page=2", fields["query"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
	})

	t.Run("logs client errors at warn and server errors at error", func(t *testing.T) {
		log, logs := newObservedLogger()
		engine := gin.New()
		engine.Use(AccessLog(log))
		engine.GET("/bad", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })
		engine.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

		require.Equal(t, 2, logs.Len())
		assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)
		assert.Equal(t, zap.ErrorLevel, logs.All()[1].Level)
	})

	t.Run("records the acting user on decision calls", func(t *testing.T) {
		log, logs := newObservedLogger()
		engine := gin.New()
		engine.Use(func(c *gin.Context) {
			c.Set("jwt_user_id", "7f9c9a31-2a51-4c8e-9d7d-3f0b7b1f6a42")
			c.Next()
		})
		engine.Use(AccessLog(log))
		engine.POST("/api/v1/claims/:id/approve", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/abc/approve", nil)
		engine.ServeHTTP(httptest.NewRecorder(), req)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "7f9c9a31-2a51-4c8e-9d7d-3f0b7b1f6a42", logs.All()[0].ContextMap()["actor_id"])
	})

	t.Run("stores a request-scoped logger for handlers", func(t *testing.T) {
		log, logs := newObservedLogger()
		engine := gin.New()
		engine.Use(AccessLog(log))
		engine.GET("/api/v1/claims", func(c *gin.Context) {
			FromGin(c).Info("listing claims")
			c.Status(http.StatusOK)
		})

		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/claims", nil))

		require.Equal(t, 2, logs.Len())
		assert.Equal(t, "listing claims", logs.All()[0].Message)
		assert.Equal(t, "GET", logs.All()[0].ContextMap()["method"])
	})
}

func TestFromGin_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	log := FromGin(c)

	require.NotNil(t, log)
	// Nop logger: writing through it must not panic.
	log.Info("ignored")
}

func TestRecovery(t *testing.T) {
	t.Run("turns a panic into a 500 with a stack trace", func(t *testing.T) {
		log, logs := newObservedLogger()
		engine := gin.New()
		engine.Use(Recovery(log))
		engine.POST("/api/v1/payments/:headerId/records", func(c *gin.Context) {
			panic("ledger invariant violated")
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments/xyz/records", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.ErrorLevel, entry.Level)
		assert.Equal(t, "panic recovered", entry.Message)
		fields := entry.ContextMap()
		assert.Equal(t, "ledger invariant violated", fields["panic"])
		assert.NotEmpty(t, fields["stacktrace"])
	})

	t.Run("logs a torn-down connection at warn without a stack", func(t *testing.T) {
		log, logs := newObservedLogger()
		engine := gin.New()
		engine.Use(Recovery(log))
		engine.GET("/api/v1/claims", func(c *gin.Context) {
			panic(&net.OpError{Op: "write", Err: os.NewSyscallError("write", errors.New("broken pipe"))})
		})

		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/claims", nil))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.WarnLevel, entry.Level)
		assert.Equal(t, "client closed connection mid-request", entry.Message)
		assert.NotContains(t, entry.ContextMap(), "stacktrace")
	})

	t.Run("passes clean requests through", func(t *testing.T) {
		log, logs := newObservedLogger()
		engine := gin.New()
		engine.Use(Recovery(log))
		engine.GET("/api/v1/claims", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/claims", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, logs.Len())
	})
}

func TestIsClientGone(t *testing.T) {
	brokenPipe := &net.OpError{Op: "write", Err: os.NewSyscallError("write", errors.New("broken pipe"))}
	connReset := &net.OpError{Op: "write", Err: os.NewSyscallError("write", errors.New("connection reset by peer"))}

	assert.True(t, isClientGone(brokenPipe))
	assert.True(t, isClientGone(connReset))
	assert.False(t, isClientGone(errors.New("broken pipe")))
	assert.False(t, isClientGone("not an error"))
	assert.False(t, isClientGone(&net.OpError{Op: "dial", Err: errors.New("refused")}))
}
