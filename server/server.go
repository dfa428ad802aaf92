// Package server exposes the Newton-Raphson calculator over HTTP with gin.
//
// Routes:
//
//	POST /api/calculate    run the method, 400 on bad input, 422 on method failure
//	POST /api/tool         tool-call interface
//	GET  /api/tool/schema  tool schema for agent registration
//	GET  /health           liveness check
//	GET  /metrics          Prometheus exposition (when enabled)
//	GET  /*                front-end build, or the welcome text
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Server is a configured HTTP service. Create with New, start with Run.
type Server struct {
	cfg     Config
	logger  *slog.Logger
	router  *gin.Engine
	metrics *Metrics
	version string
}

// New validates cfg and builds the router. It does not listen.
func New(cfg Config, logger *slog.Logger, version string) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(cfg.GinMode)

	var metrics *Metrics
	if cfg.MetricsEnabled {
		metrics = NewMetrics()
	}

	router := gin.New()
	router.Use(
		requestID(),
		recovery(logger),
		requestLogger(logger),
		otelgin.Middleware(cfg.Tracing.ServiceName),
		corsMiddleware(cfg.AllowedOrigins),
	)
	if metrics != nil {
		router.Use(instrument(metrics))
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		router.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst), metrics))
	}
	router.Use(bodyLimit(cfg.MaxBodyBytes))

	h := NewHandlers(cfg.Calculator.NewCalculator(), metrics, logger)
	SetupRoutes(router, h, metrics, cfg.StaticDir)

	return &Server{cfg: cfg, logger: logger, router: router, metrics: metrics, version: version}, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Metrics returns the collectors, or nil when metrics are disabled.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Run installs tracing, listens on the configured port and blocks until ctx
// is cancelled or the listener fails, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	shutdownTracing, err := InitTracing(ctx, s.cfg.Tracing, s.version)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("gonewton server listening",
			"addr", srv.Addr,
			"static_dir", s.cfg.StaticDir,
			"metrics", s.cfg.MetricsEnabled,
			"tracing", s.cfg.Tracing.Exporter)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	tctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if terr := shutdownTracing(tctx); terr != nil {
		s.logger.Error("failed to shut down tracer provider", "error", terr)
	}
	return err
}
