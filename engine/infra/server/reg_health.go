package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/version"
)

// CreateHealthHandler answers GET /api/health.
func CreateHealthHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"version":     version.GetVersion(),
			"environment": cfg.Runtime.Environment,
		})
	}
}
