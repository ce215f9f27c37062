package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quantprep/examgate/internal/config"
	"github.com/quantprep/examgate/internal/handler"
	"github.com/quantprep/examgate/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	Test    *handler.TestHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/tests/:id", handlers.Test.Get)

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.Session.Start)
			sessions.GET("/:id", handlers.Session.Get)
			sessions.POST("/:id/answer", handlers.Session.Answer)
			sessions.POST("/:id/review", handlers.Session.Review)
			sessions.POST("/:id/navigate", handlers.Session.Navigate)
			sessions.POST("/:id/submit", handlers.Session.Submit)
			sessions.DELETE("/:id", handlers.Session.Abandon)
			sessions.GET("/:id/ws", handlers.WS.Stream)
		}
	}

	return router
}
