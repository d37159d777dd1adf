package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/intentiq/intentiq/internal/logger"
	"github.com/intentiq/intentiq/internal/metrics"
)

const userIDHeader = "X-User-ID"

// userID returns the authenticated user set by requireUser.
func userID(c *gin.Context) string {
	return c.GetString("user_id")
}

// requireUser rejects requests without a user identity. Upstream auth
// terminates the session and forwards the subject in X-User-ID.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(userIDHeader)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + userIDHeader + " header",
			})
			return
		}
		c.Set("user_id", id)
		c.Next()
	}
}

// requestLogger logs one line per request.
func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
		)
	}
}

// SetupRoutes registers all endpoints on the router.
func SetupRoutes(router *gin.Engine, h *Handler, m *metrics.Metrics, allowedOrigins []string, log logger.Logger) {
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", userIDHeader},
		MaxAge:       12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
		corsCfg.AllowCredentials = true
	}
	router.Use(cors.New(corsCfg))
	if m != nil {
		router.Use(m.Middleware())
		router.GET("/metrics", m.Handler())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().UTC()})
	})

	v1 := router.Group("/api/v1")

	// Stripe calls this directly; it authenticates by signature, not header.
	v1.POST("/webhooks/stripe", h.StripeWebhook)

	authed := v1.Group("")
	authed.Use(requireUser())
	{
		authed.POST("/search", h.Search)

		leads := authed.Group("/leads")
		{
			leads.GET("", h.ListLeads)
			leads.POST("", h.SaveLead)
			leads.GET("/:id", h.GetLead)
			leads.PATCH("/:id", h.UpdateLead)
			leads.DELETE("/:id", h.DeleteLead)
		}

		keywords := authed.Group("/keywords")
		{
			keywords.GET("", h.ListKeywords)
			keywords.POST("", h.CreateKeyword)
			keywords.DELETE("/:id", h.DeleteKeyword)
		}

		settings := authed.Group("/settings")
		{
			settings.GET("", h.GetSettings)
			settings.PUT("", h.UpdateSettings)
		}

		authed.GET("/analytics", h.Analytics)
		authed.GET("/export", h.Export)
	}
}
