package server

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mantonx/reelbase/internal/modules/modulemanager"
)

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/modules", s.handleModules)
	}

	// Module routes
	s.modules.RegisterRoutes(s.engine)

	// Route discovery, built after every module has registered
	api.GET("", s.handleRoutes)
}

// handleHealth reports the aggregate state and every module's status. Any
// unhealthy module turns the response into a 503.
func (s *Server) handleHealth(c *gin.Context) {
	modules := s.modules.Health(c.Request.Context())

	overall := modulemanager.HealthStateHealthy
	for _, status := range modules {
		switch status.Status {
		case modulemanager.HealthStateUnhealthy:
			overall = modulemanager.HealthStateUnhealthy
		case modulemanager.HealthStateDegraded:
			if overall == modulemanager.HealthStateHealthy {
				overall = modulemanager.HealthStateDegraded
			}
		}
	}

	code := http.StatusOK
	if overall == modulemanager.HealthStateUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  overall,
		"time":    time.Now().UTC(),
		"modules": modules,
	})
}

func (s *Server) handleModules(c *gin.Context) {
	type moduleInfo struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Core bool   `json:"core"`
	}

	var out []moduleInfo
	for _, m := range s.modules.Modules() {
		out = append(out, moduleInfo{ID: m.ID(), Name: m.Name(), Core: m.Core()})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// handleRoutes lists every registered endpoint.
func (s *Server) handleRoutes(c *gin.Context) {
	type route struct {
		Method string `json:"method"`
		Path   string `json:"path"`
	}

	var out []route
	for _, r := range s.engine.Routes() {
		out = append(out, route{Method: r.Method, Path: r.Path})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}
