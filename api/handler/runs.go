package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/fahndung/history"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/schedule"
)

// ListRuns returns a handler for GET /api/v1/runs?limit=N.
func ListRuns(h *history.History) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				fail(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "limit must be a positive integer")
				return
			}
			limit = n
		}
		c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: h.List(limit)})
	}
}

// GetRun returns a handler for GET /api/v1/runs/:id.
func GetRun(h *history.History) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, ok := h.Get(c.Param("id"))
		if !ok {
			fail(c, http.StatusNotFound, models.ErrCodeNotFound, "run not found or expired")
			return
		}
		c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: report})
	}
}

// Sources returns a handler for GET /api/v1/sources.
func Sources(descriptors []models.SourceDescriptor) gin.HandlerFunc {
	infos := make([]models.SourceInfo, 0, len(descriptors))
	for _, d := range descriptors {
		infos = append(infos, d.Info())
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: infos})
	}
}

// Schedule returns a handler for GET /api/v1/schedule. A nil scheduler
// reports an empty list.
func Schedule(s *schedule.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := []schedule.Entry{}
		if s != nil {
			entries = s.Entries()
		}
		c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: entries})
	}
}
