package middleware

import (
	"net/http"

	"github.com/chordquest/chordquest-api/internal/config"
	"github.com/gin-gonic/gin"
)

// CORS allows the browser game client, served from a different origin than
// the API in most deployments, to reach the stage/chord/run endpoints and
// open the run websocket.
func CORS(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", cfg.CorsAllowedOrigins)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
