package server

import (
	"errors"
	"net/http"
	"time"

	"classbuzz/internal/session"
	"classbuzz/internal/zone"

	"github.com/gin-gonic/gin"
)

type zonePreviewRequest struct {
	Rows   int    `form:"rows" binding:"min=1,max=100"`
	Cols   int    `form:"cols" binding:"min=1,max=100"`
	Mode   string `form:"mode" binding:"required,mode"`
	Target int    `form:"target" binding:"min=0"`
}

var zonePreviewMessages = bindMessages{
	"Rows":   {"min": "rows must be at least 1", "max": "rows must be 100 or fewer"},
	"Cols":   {"min": "cols must be at least 1", "max": "cols must be 100 or fewer"},
	"Mode":   {"required": "mode is required", "mode": "mode must be all, cross or square"},
	"Target": {"min": "target must not be negative"},
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

func (s *Server) apiRoutes() *gin.Engine {
	registerValidators()
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	api := engine.Group("/api")
	api.GET("/session", s.handleSessionSnapshot)
	api.GET("/zones", s.handleZonePreview)
	return engine
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("api request")
	}
}

func (s *Server) handleSessionSnapshot(c *gin.Context) {
	snap, err := s.dispatcher.Snapshot(c.Request.Context())
	if err != nil {
		status := http.StatusServiceUnavailable
		if !errors.Is(err, session.ErrDispatcherStopped) {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{"error": "session unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":     snap,
		"connections": s.ws.Stats(),
	})
}

// handleZonePreview computes zones for an arbitrary layout without touching
// the live round, so the host console can show what a mode would select.
func (s *Server) handleZonePreview(c *gin.Context) {
	var req zonePreviewRequest
	if !bindQuery(c, &req, zonePreviewMessages, "invalid zone request") {
		return
	}
	mode, err := zone.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be all, cross or square"})
		return
	}
	layout := zone.Layout{Rows: req.Rows, Cols: req.Cols}
	if !zone.ValidTarget(mode, req.Target, layout) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target must be a seat on the grid"})
		return
	}
	active, locked := zone.Compute(mode, req.Target, layout)
	c.JSON(http.StatusOK, session.GridState{Active: active, Locked: locked})
}
