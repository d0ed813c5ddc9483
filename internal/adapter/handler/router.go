package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bymediadev/SoapBoxx/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg      *config.Config
	feedback *Feedback
	sessions *Sessions
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, feedback *Feedback, sessions *Sessions) *Router {
	return &Router{
		cfg:      cfg,
		feedback: feedback,
		sessions: sessions,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")

	rt.setupSessionRoutes(v1)
	rt.setupFeedbackRoutes(v1)
}

func (rt *Router) setupSessionRoutes(g *echo.Group) {
	g.GET("/devices", rt.sessions.Devices)

	sessionGroup := g.Group("/sessions")
	sessionGroup.POST("", rt.sessions.Start)
	sessionGroup.POST("/:id/stop", rt.sessions.Stop)
	sessionGroup.GET("/:id/transcript", rt.sessions.Transcript)
	sessionGroup.GET("/:id/stream", rt.sessions.Stream)
}

func (rt *Router) setupFeedbackRoutes(g *echo.Group) {
	feedbackGroup := g.Group("/feedback")
	feedbackGroup.POST("/analyze", rt.feedback.Analyze)
	feedbackGroup.POST("/focus", rt.feedback.Focus)
	feedbackGroup.POST("/compare", rt.feedback.Compare)
	feedbackGroup.GET("/cache/stats", rt.feedback.CacheStats)
	feedbackGroup.POST("/cache/clear", rt.feedback.CacheClear)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
