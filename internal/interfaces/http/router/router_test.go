package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// claimRoutes mirrors the shape of the claim handler: a resource group with
// collection and decision endpoints.
type claimRoutes struct {
	registered []string
}

func (r *claimRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	claims := rg.Group("/claims")
	claims.GET("", r.record("list"))
	claims.POST("", r.record("submit"))
	claims.POST("/:id/approve", r.record("approve"))
	claims.POST("/:id/reject", r.record("reject"))
}

func (r *claimRoutes) record(op string) gin.HandlerFunc {
	return func(c *gin.Context) {
		r.registered = append(r.registered, op)
		c.Status(http.StatusOK)
	}
}

type paymentRoutes struct{}

func (paymentRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	payments.GET("/:headerId", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	payments.POST("/:headerId/records", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
}

func perform(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouter_MountsRegistrarsUnderVersionPrefix(t *testing.T) {
	engine := gin.New()
	claims := &claimRoutes{}

	NewRouter(engine).Register(claims).Register(paymentRoutes{}).Setup()

	assert.Equal(t, http.StatusOK, perform(engine, http.MethodGet, "/api/v1/claims").Code)
	assert.Equal(t, http.StatusOK, perform(engine, http.MethodPost, "/api/v1/claims/abc/approve").Code)
	assert.Equal(t, http.StatusOK, perform(engine, http.MethodGet, "/api/v1/payments/xyz").Code)
	assert.Equal(t, http.StatusCreated, perform(engine, http.MethodPost, "/api/v1/payments/xyz/records").Code)
	assert.Equal(t, []string{"list", "approve"}, claims.registered)
}

func TestRouter_UnversionedPathIsNotServed(t *testing.T) {
	engine := gin.New()

	NewRouter(engine).Register(&claimRoutes{}).Setup()

	assert.Equal(t, http.StatusNotFound, perform(engine, http.MethodGet, "/claims").Code)
}

func TestRouter_WithAPIVersion(t *testing.T) {
	engine := gin.New()

	r := NewRouter(engine, WithAPIVersion("v2"))
	r.Register(&claimRoutes{}).Setup()

	assert.Equal(t, "/api/v2", r.APIPrefix())
	assert.Equal(t, http.StatusOK, perform(engine, http.MethodGet, "/api/v2/claims").Code)
	assert.Equal(t, http.StatusNotFound, perform(engine, http.MethodGet, "/api/v1/claims").Code)
}

func TestRouter_SetupWithoutRegistrars(t *testing.T) {
	engine := gin.New()

	NewRouter(engine).Setup()

	assert.Equal(t, http.StatusNotFound, perform(engine, http.MethodGet, "/api/v1/claims").Code)
}

func TestRouter_RegistrarsKeepTheirOwnGroups(t *testing.T) {
	engine := gin.New()

	NewRouter(engine).Register(&claimRoutes{}).Register(paymentRoutes{}).Setup()

	// Paths one group never declared don't leak in from the other.
	assert.Equal(t, http.StatusNotFound, perform(engine, http.MethodGet, "/api/v1/claims/abc").Code)
	assert.Equal(t, http.StatusNotFound, perform(engine, http.MethodPost, "/api/v1/payments/xyz/approve").Code)
}
