package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmops/backend/internal/infrastructure/auth"
	"github.com/farmops/backend/internal/infrastructure/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, userID uuid.UUID) string {
	t.Helper()
	token, _, err := svc.GenerateAccessToken(userID, "siti.field")
	require.NoError(t, err)
	return token
}

func newJWTTestRouter(svc *auth.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetJWTUserID(c)})
	})
	router.GET("/api/v1/system/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return router
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	router := newJWTTestRouter(svc)
	userID := uuid.New()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, svc, userID))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	router := newJWTTestRouter(newTestJWTService())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_INVALID")
}

func TestJWTAuthMiddleware_MalformedHeader(t *testing.T) {
	svc := newTestJWTService()
	router := newJWTTestRouter(svc)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no bearer prefix", header: issueToken(t, svc, uuid.New())},
		{name: "empty bearer", header: "Bearer "},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", tt.header)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: -1 * time.Minute,
		Issuer:                "test-issuer",
	})
	router := newJWTTestRouter(newTestJWTService())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, expired, uuid.New()))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := newJWTTestRouter(newTestJWTService())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/system/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_CustomOnError(t *testing.T) {
	svc := newTestJWTService()
	cfg := DefaultJWTConfig(svc)
	cfg.OnError = func(c *gin.Context, err error) {
		c.AbortWithStatusJSON(http.StatusTeapot, gin.H{"custom": true})
	}

	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/protected", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestJWTContextAccessors(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	var capturedUserID, capturedUsername string
	var capturedClaims *auth.Claims

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/protected", func(c *gin.Context) {
		capturedUserID = GetJWTUserID(c)
		capturedUsername = GetJWTUsername(c)
		capturedClaims = GetJWTClaims(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, svc, userID))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), capturedUserID)
	assert.Equal(t, "siti.field", capturedUsername)
	require.NotNil(t, capturedClaims)
	assert.Equal(t, userID.String(), capturedClaims.UserID)
}

func TestJWTContextAccessors_EmptyContext(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	assert.Empty(t, GetJWTUserID(c))
	assert.Empty(t, GetJWTUsername(c))
	assert.Nil(t, GetJWTClaims(c))
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	router := gin.New()
	router.Use(OptionalJWTAuthMiddleware(svc))
	router.GET("/open", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetJWTUserID(c)})
	})

	t.Run("without token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/open", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("with valid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/open", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, svc, userID))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("with invalid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/open", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
