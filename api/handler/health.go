package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/session"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// The status degrades when no source is registered.
func Health(sessions Sessions, sources int, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		if sources == 0 {
			status = "degraded"
		}
		running := map[string]bool{}
		for _, kind := range []string{session.KindPersons, session.KindNews, session.KindRetention} {
			running[kind] = sessions.Running(kind)
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Running: running,
			Sources: sources,
			Version: Version,
		})
	}
}
