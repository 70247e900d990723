package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// ProfilingConfig holds configuration for the profiling middleware
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig skips health checks and the API docs
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/health", "/health/ready"},
		SkipPathPrefixes: []string{"/swagger"},
	}
}

// ProfilingWithConfig tags CPU samples taken while serving a request with its
// route, method and caller role so profiles can be sliced per endpoint
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if slices.Contains(cfg.SkipPaths, path) || slices.ContainsFunc(cfg.SkipPathPrefixes, func(p string) bool {
			return strings.HasPrefix(path, p)
		}) {
			c.Next()
			return
		}

		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(profilingLabels(c)...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) []string {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	labels := []string{"method", c.Request.Method, "route", route}
	if role := GetJWTRole(c); role != "" {
		labels = append(labels, "role", string(role))
	}
	return labels
}
