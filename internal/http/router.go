package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	filesController := NewFilesController(cfg.Database, cfg.Intake, cfg.Orchestrator, cfg.TaskClient)
	proposalsController := NewProposalsController(cfg.Database, cfg.Orchestrator, cfg.TaskClient)
	templatesController := NewTemplatesController(cfg.Database)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/api/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// File endpoints
	router.GET("/api/files", filesController.ListFiles)
	router.GET("/api/files/:id", filesController.GetFile)
	router.GET("/api/files/:id/errors", filesController.GetFileErrors)
	router.POST("/api/files/:id/reprocess", filesController.ReprocessFile)
	router.POST("/api/files/upload", filesController.UploadFile)

	// Proposal review endpoints
	router.GET("/api/proposals", proposalsController.ListProposals)
	router.GET("/api/proposals/:id", proposalsController.GetProposal)
	router.POST("/api/proposals/:id/approve", proposalsController.ApproveProposal)
	router.POST("/api/proposals/:id/reject", proposalsController.RejectProposal)

	// Template catalog endpoints
	router.GET("/api/templates", templatesController.ListTemplates)
	router.POST("/api/templates", templatesController.CreateTemplate)
	router.DELETE("/api/templates/:id", templatesController.DeactivateTemplate)

	return router
}
