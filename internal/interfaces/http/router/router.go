// Package router assembles the portal's route groups.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds registrars to be set up later
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every registrar under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup is a prefix with its own middleware, routes and subgroups
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle registers a route for method
func (dg *DomainGroup) Handle(method, relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: relativePath, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, relativePath, handlers...)
}

// POST registers a POST route
func (dg *DomainGroup) POST(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, relativePath, handlers...)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, relativePath, handlers...)
}

// PATCH registers a PATCH route
func (dg *DomainGroup) PATCH(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPatch, relativePath, handlers...)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, relativePath, handlers...)
}

// Group creates a sub-group within this domain. It inherits the parent's
// middleware.
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Routes lists "METHOD /path" for every route of the group and its
// subgroups, relative to where the group is mounted
func (dg *DomainGroup) Routes() []string {
	return dg.routesUnder("/")
}

func (dg *DomainGroup) routesUnder(base string) []string {
	prefix := path.Join(base, dg.prefix)
	out := make([]string, 0, len(dg.routes))
	for _, route := range dg.routes {
		p := path.Join(prefix, route.path)
		out = append(out, route.method+" "+p)
	}
	for _, sg := range dg.subgroups {
		out = append(out, sg.routesUnder(prefix)...)
	}
	return out
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}
