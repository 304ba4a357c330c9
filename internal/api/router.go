package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/epigraph/internal/api/handler"
	"github.com/timmy/epigraph/internal/api/middleware"
	"github.com/timmy/epigraph/internal/service"
	"github.com/timmy/epigraph/internal/session"
)

// RouterConfig holds the collaborators and settings the router is built from.
type RouterConfig struct {
	Mode          string
	CORS          middleware.CORSConfig
	Sessions      *session.Manager
	Catalog       *service.ScriptCatalog
	Model         string
	MaxImageBytes int64
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(cfg RouterConfig) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	// Multipart bodies above this spill to disk; the handler enforces the real limit.
	r.MaxMultipartMemory = cfg.MaxImageBytes + 1<<20

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler(cfg.Model)
	scriptHandler := handler.NewScriptHandler(cfg.Catalog)
	analysisHandler := handler.NewAnalysisHandler(cfg.MaxImageBytes)
	chatHandler := handler.NewChatHandler()
	communityHandler := handler.NewCommunityHandler()

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth())
	{
		v1.GET("/scripts", scriptHandler.List)
	}

	s := v1.Group("")
	s.Use(middleware.Session(cfg.Sessions))
	{
		// Analysis
		s.GET("/analysis", analysisHandler.Get)
		s.POST("/analysis", analysisHandler.Analyze)
		s.DELETE("/analysis", analysisHandler.Reset)
		s.POST("/analysis/file", analysisHandler.SelectFile)
		s.PUT("/analysis/share", analysisHandler.SetShare)

		// Chat
		s.GET("/chat/messages", chatHandler.List)
		s.POST("/chat/messages", chatHandler.Send)

		// Community
		s.GET("/community", communityHandler.Get)
		s.POST("/community/reload", communityHandler.Reload)
		s.POST("/community/translations/:id/toggle", communityHandler.Toggle)
		s.POST("/community/comments", communityHandler.PostComment)
	}

	return r
}
