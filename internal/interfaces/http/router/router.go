// Package router mounts the storefront HTTP handlers onto a gin engine.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Route describes one registered endpoint
type Route struct {
	Method string
	Path   string
	Group  string
}

// Router collects route groups and mounts them under a common base path
type Router struct {
	engine   *gin.Engine
	basePath string
	groups   []*Group
}

// Option configures a Router
type Option func(*Router)

// WithBasePath overrides the default /api/v1 mount point
func WithBasePath(basePath string) Option {
	return func(r *Router) {
		r.basePath = basePath
	}
}

// NewRouter creates a Router for engine
func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{
		engine:   engine,
		basePath: "/api/v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add queues groups for Setup
func (r *Router) Add(groups ...*Group) *Router {
	r.groups = append(r.groups, groups...)
	return r
}

// Setup mounts every queued group on the engine
func (r *Router) Setup() {
	base := r.engine.Group(r.basePath)
	for _, g := range r.groups {
		g.mount(base)
	}
}

// Routes lists every endpoint the queued groups declare, with full paths
func (r *Router) Routes() []Route {
	var out []Route
	for _, g := range r.groups {
		out = g.collect(r.basePath, out)
	}
	return out
}

type endpoint struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// Group is a named set of endpoints sharing a prefix and middleware
type Group struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	endpoints  []endpoint
	children   []*Group
}

// NewGroup creates a group mounted at prefix
func NewGroup(name, prefix string, middleware ...gin.HandlerFunc) *Group {
	return &Group{name: name, prefix: prefix, middleware: middleware}
}

// Name returns the group name
func (g *Group) Name() string { return g.name }

// Handle declares an endpoint
func (g *Group) Handle(method, relativePath string, handlers ...gin.HandlerFunc) *Group {
	g.endpoints = append(g.endpoints, endpoint{method: method, path: relativePath, handlers: handlers})
	return g
}

// GET declares a GET endpoint
func (g *Group) GET(relativePath string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodGet, relativePath, handlers...)
}

// POST declares a POST endpoint
func (g *Group) POST(relativePath string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPost, relativePath, handlers...)
}

// PUT declares a PUT endpoint
func (g *Group) PUT(relativePath string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPut, relativePath, handlers...)
}

// DELETE declares a DELETE endpoint
func (g *Group) DELETE(relativePath string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodDelete, relativePath, handlers...)
}

// Sub creates a nested group that inherits this group's prefix and middleware
func (g *Group) Sub(name, prefix string, middleware ...gin.HandlerFunc) *Group {
	child := NewGroup(name, prefix, middleware...)
	g.children = append(g.children, child)
	return child
}

func (g *Group) mount(parent *gin.RouterGroup) {
	rg := parent.Group(g.prefix, g.middleware...)
	for _, e := range g.endpoints {
		rg.Handle(e.method, e.path, e.handlers...)
	}
	for _, child := range g.children {
		child.mount(rg)
	}
}

func (g *Group) collect(parentPath string, out []Route) []Route {
	full := path.Join(parentPath, g.prefix)
	for _, e := range g.endpoints {
		p := full
		if e.path != "" && e.path != "/" {
			p = path.Join(full, e.path)
		}
		out = append(out, Route{Method: e.method, Path: p, Group: g.name})
	}
	for _, child := range g.children {
		out = child.collect(full, out)
	}
	return out
}
