package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"discordllm/internal/core"
	"discordllm/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Server exposes /health and /api/stats for external monitoring.
type Server struct {
	port          string
	heartbeatPath string
	staleAfter    time.Duration
	metrics       *metrics.MetricsService
	logger        core.Logger
	httpServer    *http.Server
}

// ServerConfig configures the status server.
type ServerConfig struct {
	Port          string
	HeartbeatPath string
	StaleAfter    time.Duration
	Metrics       *metrics.MetricsService
	Logger        core.Logger
}

// NewServer creates a status server.
func NewServer(cfg ServerConfig) *Server {
	staleAfter := cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = core.HeartbeatStaleAfter
	}
	logger := cfg.Logger
	if logger == nil {
		logger = &core.NopLogger{}
	}
	return &Server{
		port:          cfg.Port,
		heartbeatPath: cfg.HeartbeatPath,
		staleAfter:    staleAfter,
		metrics:       cfg.Metrics,
		logger:        logger,
	}
}

func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.healthCheck)
	router.GET("/api/stats", s.getStats)

	return router
}

func (s *Server) healthCheck(c *gin.Context) {
	if !CheckHeartbeat(s.heartbeatPath, s.staleAfter, time.Now()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getStats(c *gin.Context) {
	if s.metrics == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s.metrics.GetSnapshot())
}

// Start launches the status server in a background goroutine.
func (s *Server) Start() {
	s.httpServer = &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.logger.Info("Status server listening on port %s", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Status server error: %v", err)
		}
	}()
}

// Shutdown gracefully stops the status server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
