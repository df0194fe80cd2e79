package httpapi

import (
	"github.com/gin-gonic/gin"

	"shorty/internal/adapters/httpapi/handlers"
	"shorty/internal/app/links"
)

const (
	linksPath      = "/links"
	linkByCodePath = "/links/:code"
	linkStatsPath  = "/links/:code/stats"
	redirectPath   = "/r/:code"
)

type RouterDeps struct {
	Links   links.UseCase
	BaseURL string
}

type EnginePlugin func(*gin.Engine)

// NewEngine creates a bare gin.Engine and applies plugins in order.
func NewEngine(plugins ...EnginePlugin) *gin.Engine {
	r := gin.New()

	for _, p := range plugins {
		p(r)
	}

	return r
}

// RegisterRoutes attaches routes/handlers to an existing engine.
func RegisterRoutes(r *gin.Engine, deps RouterDeps) {
	h := handlers.New(deps.Links, deps.BaseURL)

	r.NoRoute(h.NotFound)
	r.GET("/ping", h.Ping)

	api := r.Group("/api")
	{
		api.GET(linksPath, h.ListLinks)
		api.POST(linksPath, h.CreateLink)
		api.PUT(linkByCodePath, h.UpdateLink)
		api.DELETE(linkByCodePath, h.DeleteLink)
		api.GET(linkStatsPath, h.LinkStats)
	}

	r.GET(redirectPath, h.Redirect)
}
