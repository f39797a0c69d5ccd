package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/dago-node-renderer/internal/layout"
	"github.com/aescanero/dago-node-renderer/internal/router"
)

// Server serves health checks and page previews over HTTP
type Server struct {
	port        int
	redisClient *redis.Client
	renderer    *Renderer
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a new HTTP server
func NewServer(port int, redisClient *redis.Client, renderer *Renderer, logger *zap.Logger) *Server {
	return &Server{
		port:        port,
		redisClient: redisClient,
		renderer:    renderer,
		logger:      logger,
	}
}

// Handler returns the gin router serving every endpoint
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/health", s.handleHealth)
	r.GET("/ready", s.handleReady)
	r.POST("/render/*page", s.handleRender)

	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("starting http server", zap.Int("port", s.port))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("stopping http server")
	return s.server.Shutdown(ctx)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ErrorResponse is returned by a failed preview
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string)

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		checks["redis"] = fmt.Sprintf("unhealthy: %v", err)
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Checks: checks,
		})
		return
	}
	checks["redis"] = "healthy"

	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
		Checks: checks,
	})
}

// handleReady handles the /ready endpoint
func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status: "not ready",
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status: "ready",
	})
}

// handleRender renders the page named by the path against the JSON body.
// The lang query parameter sets the page locale.
func (s *Server) handleRender(c *gin.Context) {
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid page data: %v", err)})
		return
	}

	request := &RenderRequest{
		RequestID: c.GetHeader("X-Request-ID"),
		Page:      strings.TrimPrefix(c.Param("page"), "/"),
		Data:      data,
		Locale:    c.Query("lang"),
	}

	result, err := s.renderer.Render(c.Request.Context(), request)
	if err != nil {
		s.logger.Warn("preview failed",
			zap.String("request_id", request.RequestID),
			zap.String("page", request.Page),
			zap.Error(err),
		)
		c.JSON(statusOf(err), ErrorResponse{Error: err.Error(), RequestID: request.RequestID})
		return
	}

	c.Header("X-Request-ID", result.RequestID)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(result.HTML))
}

// statusOf maps a render error to an HTTP status
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrMissingPage):
		return http.StatusBadRequest
	case errors.Is(err, layout.ErrMissingPartial), errors.Is(err, router.ErrNoRoute):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusUnprocessableEntity
	}
}
