// Package router mounts handler route registrars on the versioned API group.
package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by every HTTP handler in this service. Each
// handler owns its own paths; the router only decides where they hang.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and mounts them under /api/<version>.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithAPIVersion overrides the version segment of the API prefix.
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a Router on the given engine. The version defaults to v1.
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a registrar for Setup. Returns the router so the claim,
// payment, attachment and system handlers chain in one statement.
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts every queued registrar on the versioned group.
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// APIPrefix returns the group prefix routes are mounted under.
func (r *Router) APIPrefix() string {
	return "/api/" + r.apiVersion
}
