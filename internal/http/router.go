package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.DocumentPing, cfg.GraphPing, cfg.Version)
	trees := NewTreesController(cfg.TreeService)
	importer := NewGedcomImportController(cfg.ImportService)
	exporter := NewGedcomExportController(cfg.ExportService)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Tree management
	router.POST("/api/trees", trees.Create)
	router.GET("/api/trees", trees.List)
	router.GET("/api/trees/:id", trees.Get)

	// Import and export
	router.POST("/api/trees/:id/import", importer.Import)
	router.GET("/api/trees/:id/export", exporter.Export)

	return router
}
