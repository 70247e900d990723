// Package router assembles the gin engine: the global middleware chain, the
// versioned API groups and the operational endpoints.
package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIVersion is the path segment every resource group is mounted under
const APIVersion = "v1"

// Group collects the routes of one resource (auth, transactions, ...) under a
// shared prefix. Middleware added with Use runs before every route handler of
// the group, after the engine-wide chain.
type Group struct {
	name   string
	prefix string
	chain  []gin.HandlerFunc
	routes []Route
}

// Route is one method and path of a Group, relative to its prefix
type Route struct {
	Method   string
	Path     string
	handlers []gin.HandlerFunc
}

// NewGroup starts an empty group
func NewGroup(name, prefix string) *Group {
	return &Group{name: name, prefix: prefix}
}

func (g *Group) Name() string   { return g.name }
func (g *Group) Prefix() string { return g.prefix }

// Routes lists the group's routes in registration order
func (g *Group) Routes() []Route {
	return g.routes
}

func (g *Group) Use(middleware ...gin.HandlerFunc) *Group {
	g.chain = append(g.chain, middleware...)
	return g
}

func (g *Group) Handle(method, path string, handlers ...gin.HandlerFunc) *Group {
	g.routes = append(g.routes, Route{Method: method, Path: path, handlers: handlers})
	return g
}

func (g *Group) GET(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodGet, path, handlers...)
}

func (g *Group) POST(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPost, path, handlers...)
}

func (g *Group) PUT(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPut, path, handlers...)
}

func (g *Group) DELETE(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodDelete, path, handlers...)
}

// Mount registers groups on engine under /api/{version}. Two groups sharing
// a prefix, or a group without routes, is a wiring mistake and is rejected
// before anything is registered.
func Mount(engine *gin.Engine, version string, groups ...*Group) error {
	seen := make(map[string]string, len(groups))
	for _, g := range groups {
		if len(g.routes) == 0 {
			return fmt.Errorf("route group %q has no routes", g.name)
		}
		if other, dup := seen[g.prefix]; dup {
			return fmt.Errorf("route groups %q and %q share prefix %q", other, g.name, g.prefix)
		}
		seen[g.prefix] = g.name
	}

	api := engine.Group("/api/" + version)
	for _, g := range groups {
		rg := api.Group(g.prefix, g.chain...)
		for _, r := range g.routes {
			rg.Handle(r.Method, r.Path, r.handlers...)
		}
	}
	return nil
}
