// Package httpserver serves any backend over the dashboard's HTTP API, for
// demos and client tests.
package httpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/domain/repositories"
	"github.com/vsinha/skudiag/pkg/infrastructure/repositories/memory"
)

// FailurePolicy scripts server errors for chosen endpoints and SKUs
type FailurePolicy interface {
	ShouldFail(endpoint repositories.Endpoint, sku entities.SKU) bool
}

type noFailures struct{}

func (noFailures) ShouldFail(repositories.Endpoint, entities.SKU) bool { return false }

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

type rootCauseRequest struct {
	SKU string `json:"sku" binding:"required"`
	Day int    `json:"day"`
}

// trendResponse sends the price as a JSON number, as the real backend does
type trendResponse struct {
	Days        []int     `json:"days"`
	Inventory   []float64 `json:"inventory"`
	Fulfilled   []float64 `json:"fulfilled"`
	Unfulfilled []float64 `json:"unfulfilled"`
	MeanDemand  []float64 `json:"mean_demand"`
	Price       float64   `json:"price"`
}

// Server exposes a backend on the four dashboard endpoints
type Server struct {
	backend  repositories.Backend
	failures FailurePolicy
	logger   *slog.Logger
	engine   *gin.Engine
}

// NewServer creates a server. A nil policy never fails.
func NewServer(backend repositories.Backend, failures FailurePolicy, logger *slog.Logger) *Server {
	if failures == nil {
		failures = noFailures{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		backend:  backend,
		failures: failures,
		logger:   logger,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())

	s.engine.GET("/"+string(repositories.EndpointSimulationRange), s.GetSimulationRangeHandler)
	s.engine.POST("/"+string(repositories.EndpointRootCause), s.PostRootCauseHandler)
	s.engine.GET("/"+string(repositories.EndpointVendor)+"/:sku", s.GetVendorPerformanceHandler)
	s.engine.GET("/"+string(repositories.EndpointTrend)+"/:sku", s.GetInventoryTrendHandler)
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("fixture server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// GetSimulationRangeHandler handles GET /simulation-range
func (s *Server) GetSimulationRangeHandler(c *gin.Context) {
	if s.failures.ShouldFail(repositories.EndpointSimulationRange, "") {
		s.scriptedFailure(c)
		return
	}
	rng, err := s.backend.GetSimulationRange(c.Request.Context())
	if err != nil {
		s.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, rng)
}

// PostRootCauseHandler handles POST /sku-root-cause
func (s *Server) PostRootCauseHandler(c *gin.Context) {
	var req rootCauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	sku := entities.SKU(req.SKU)
	if s.failures.ShouldFail(repositories.EndpointRootCause, sku) {
		s.scriptedFailure(c)
		return
	}

	result, err := s.backend.GetRootCause(c.Request.Context(), sku, req.Day)
	if err != nil {
		s.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetVendorPerformanceHandler handles GET /vendor-performance/:sku
func (s *Server) GetVendorPerformanceHandler(c *gin.Context) {
	sku := entities.SKU(c.Param("sku"))
	if s.failures.ShouldFail(repositories.EndpointVendor, sku) {
		s.scriptedFailure(c)
		return
	}

	vendor, err := s.backend.GetVendorPerformance(c.Request.Context(), sku)
	if err != nil {
		s.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// GetInventoryTrendHandler handles GET /get_inventory_trend/:sku
func (s *Server) GetInventoryTrendHandler(c *gin.Context) {
	sku := entities.SKU(c.Param("sku"))
	if s.failures.ShouldFail(repositories.EndpointTrend, sku) {
		s.scriptedFailure(c)
		return
	}

	trend, err := s.backend.GetInventoryTrend(c.Request.Context(), sku)
	if err != nil {
		s.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, trendResponse{
		Days:        trend.Days,
		Inventory:   trend.Inventory,
		Fulfilled:   trend.Fulfilled,
		Unfulfilled: trend.Unfulfilled,
		MeanDemand:  trend.MeanDemand,
		Price:       trend.Price.InexactFloat64(),
	})
}

func (s *Server) scriptedFailure(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "scripted failure"})
}

func (s *Server) backendError(c *gin.Context, err error) {
	if errors.Is(err, memory.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	s.logger.Warn("fixture backend failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load data"})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("fixture request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"request_id", c.GetHeader("X-Request-ID"),
			"duration", time.Since(start),
		)
	}
}
