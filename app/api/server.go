package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ekazakov/news-relay/app/cfg"
)

// NewServer creates the HTTP engine with all routes configured. The
// surface is read-only: it reports, it never mutates pipeline state.
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

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

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.GetHealth)
	r.GET("/status", handler.GetStatus)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "News Relay",
			"version": cfg.GetVersion(),
			"endpoints": map[string]string{
				"health": "/health",
				"status": "/status",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
