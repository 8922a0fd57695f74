package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// Everything this service serves is a GET. Rejecting other methods up
	// front keeps them away from the embed pipeline entirely.
	r.Use(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.String(http.StatusMethodNotAllowed, "Server only supports GET requests.")
			c.Abort()
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/", handler.GetIndex)
	r.GET("/health", handler.GetHealth)
	r.GET("/oembed.json", handler.GetOEmbed)
	r.GET("/proxy", handler.GetProxy)
	r.GET("/stream/:service/:user/:id", handler.GetStream)

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})

	// Every other path is treated as a content URL to embed
	r.NoRoute(handler.GetEmbed)
}
