package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/session"
)

// Sessions is the part of session.Service the API drives.
type Sessions interface {
	Run(ctx context.Context, kind string, req session.Request) (*models.SessionReport, error)
	Running(kind string) bool
}

// Trigger starts sessions in the background. Ctx is the parent of every
// session it starts, so cancelling it on shutdown stops them.
type Trigger struct {
	Sessions Sessions
	Ctx      context.Context
	Logger   *slog.Logger
}

// PostCrawl returns a handler for POST /api/v1/crawl/{persons,news}.
//
// The session runs in the background; the response carries its ID, which
// can be polled via GET /api/v1/runs/:id.
func (tr *Trigger) PostCrawl(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CrawlRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				fail(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "invalid request body: "+err.Error())
				return
			}
		}
		jurisdictions, types, err := req.Parse()
		if err != nil {
			fail(c, http.StatusBadRequest, models.ErrCodeInvalidInput, err.Error())
			return
		}
		tr.start(c, kind, session.Request{Jurisdictions: jurisdictions, Types: types})
	}
}

// PostRetention returns a handler for POST /api/v1/retention.
func (tr *Trigger) PostRetention() gin.HandlerFunc {
	return func(c *gin.Context) {
		tr.start(c, session.KindRetention, session.Request{})
	}
}

func (tr *Trigger) start(c *gin.Context, kind string, req session.Request) {
	if tr.Sessions.Running(kind) {
		fail(c, http.StatusConflict, models.ErrCodeConflict, "a "+kind+" session is already running")
		return
	}
	req.ID = uuid.NewString()

	ctx, logger := tr.Ctx, tr.Logger
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}
	go func() {
		_, err := tr.Sessions.Run(ctx, kind, req)
		switch {
		case errors.Is(err, session.ErrAlreadyRunning):
			logger.Warn("manual session refused", "kind", kind, "session_id", req.ID)
		case err != nil:
			logger.Error("manual session failed", "kind", kind, "session_id", req.ID, "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data: models.SessionAccepted{
			ID:    req.ID,
			Kind:  kind,
			State: models.SessionRunning,
		},
	})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.APIResponse{
		Success: false,
		Error:   &models.ErrorDetail{Code: code, Message: message},
	})
}
