// Package api exposes the benefit engine over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundcu/benefit-engine/internal/common"
	"github.com/soundcu/benefit-engine/internal/engine"
	"github.com/soundcu/benefit-engine/internal/metrics"
)

// Server wraps the engine in a REST API.
type Server struct {
	engine    *engine.Engine
	collector *metrics.Collector
	router    *gin.Engine
	http      *http.Server
}

// NewServer builds the router. The collector may be nil, in which case
// the /metrics endpoint is not registered.
func NewServer(eng *engine.Engine, collector *metrics.Collector) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		engine:    eng,
		collector: collector,
		router:    router,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.collector != nil {
		s.router.GET("/metrics", gin.WrapH(s.collector.Handler()))
	}

	v1 := s.router.Group("/v1")
	v1.POST("/transactions", s.ingestTransactions)
	v1.POST("/perks/:id/usage", s.recordPerkUsage)
	v1.POST("/alerts/:id/act", s.actOnAlert)

	members := v1.Group("/members/:id")
	members.GET("/recommendations", s.getRecommendations)
	members.GET("/cards/comparison", s.getCardComparison)
	members.GET("/perks/unused", s.getUnusedPerks)
	members.GET("/alerts", s.getAlerts)
	members.GET("/score", s.getScore)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves the API until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("API server listening", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("Handled request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidRule):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrUnknownCard):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrConflict), errors.Is(err, common.ErrDuplicateEntry):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
