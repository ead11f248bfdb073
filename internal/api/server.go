// Package api serves the premium projection over HTTP with fasthttp.
package api

import (
	"context"
	"fmt"
	"net"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"premium-service/internal/common/config"
	"premium-service/internal/common/logger"
	"premium-service/internal/common/observability"
	"premium-service/internal/common/validation"
	"premium-service/internal/models"
	"premium-service/internal/plans"
)

// Projector is the projection dependency of the HTTP layer.
type Projector interface {
	Project(ctx context.Context, req *models.CalculationRequest) ([]models.ProjectionRecord, error)
}

// Server owns the fasthttp server and its routes.
type Server struct {
	cfg       *config.Config
	projector Projector
	obs       *observability.Observability
	logger    logger.Logger
	schema    *validation.Schema
	ready     func() error
	metrics   fasthttp.RequestHandler
	handler   fasthttp.RequestHandler
	srv       *fasthttp.Server
}

// Option customises a Server.
type Option func(*Server)

// WithReadinessCheck replaces the default readiness check, which only verifies
// that plans.data_dir is a directory.
func WithReadinessCheck(check func() error) Option {
	return func(s *Server) { s.ready = check }
}

func NewServer(cfg *config.Config, projector Projector, obs *observability.Observability, log logger.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		projector: projector,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "http"}),
		schema:    validation.MustSchema(validation.CalculationRequestSchema),
		metrics:   fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()),
	}
	s.ready = func() error { return plans.DirReady(cfg.Plans.DataDir) }

	for _, opt := range opts {
		opt(s)
	}

	s.handler = withRequestID(withLogging(s.logger, withCORS(cfg.CORS, s.route)))

	s.srv = &fasthttp.Server{
		Handler:            s.handler,
		Name:               cfg.App.Name,
		ReadTimeout:        config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout:       config.GetDuration(cfg.Server.WriteTimeout),
		MaxRequestBodySize: cfg.Server.MaxBodySize,
	}
	return s
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.handler
}

func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.logger.Info("HTTP server listening", map[string]interface{}{"addr": addr})
	return s.srv.ListenAndServe(addr)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/getData":
		if !ctx.IsPost() {
			ctx.Response.Header.Set("Allow", fasthttp.MethodPost)
			writeDetail(ctx, fasthttp.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
			return
		}
		s.handleGetData(ctx)
	case "/health":
		s.handleHealth(ctx)
	case "/ready":
		s.handleReady(ctx)
	case "/metrics":
		s.metrics(ctx)
	default:
		writeDetail(ctx, fasthttp.StatusNotFound, "NOT_FOUND", "Not found")
	}
}
