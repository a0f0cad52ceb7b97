package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dossier-backend/internal/documents"
	"dossier-backend/internal/files"
	"dossier-backend/internal/sections"
	"dossier-backend/internal/shared/config"
	"dossier-backend/internal/shared/metrics"
	"dossier-backend/internal/shared/server/middleware"
	"dossier-backend/internal/shared/server/respond"
	"dossier-backend/internal/templates"
)

// RouterDeps carries the handlers the router registers.
type RouterDeps struct {
	Config          config.Config
	DocumentHandler *documents.Handler
	SectionHandler  *sections.Handler
	FileHandler     *files.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	// Identity is required for everything past health and metrics.
	api.Use(middleware.Caller())
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"RENDER":  {Rate: 1, Burst: 5},
			"DEFAULT": {Rate: 20, Burst: 40},
		},
		GroupFor: func(c *gin.Context) string {
			path := c.FullPath()
			if strings.HasSuffix(path, "/render") || strings.HasSuffix(path, "/render-all") {
				return "RENDER"
			}
			return "DEFAULT"
		},
	}))
	templates.RegisterRoutes(api)
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.SectionHandler != nil {
		deps.SectionHandler.RegisterRoutes(api)
	}
	if deps.FileHandler != nil {
		deps.FileHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
