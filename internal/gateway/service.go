// Package gateway is the HTTP front of the assistant: the credential-holding
// generation endpoint, health and metrics, and the middleware chain shared by
// every route mounted on its router.
package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/gorilla/mux"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/config"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/interfaces"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/logger"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/monitoring"
)

// GeneratePath is the proxy endpoint browser clients post transcripts to
const GeneratePath = "/api/generate"

// Service is the HTTP gateway
type Service struct {
	router      *mux.Router
	server      *http.Server
	generator   interfaces.NoteGenerator
	rateLimiter interfaces.RateLimiter
	validate    *validator.Validate
	logger      *logger.Logger
	metrics     *monitoring.MetricsCollector
	tracing     *monitoring.TracingManager
	health      *monitoring.HealthManager

	allowedOrigin string
	maxBodyBytes  int64
	metricsPath   string
	healthPath    string
}

// Option configures a Service
type Option func(*Service)

// WithGenerator enables the generation endpoint. Without it the gateway only
// serves health, metrics and whatever else is mounted on its router.
func WithGenerator(g interfaces.NoteGenerator) Option {
	return func(s *Service) { s.generator = g }
}

// WithRateLimiter limits generation requests per client IP
func WithRateLimiter(rl interfaces.RateLimiter) Option {
	return func(s *Service) { s.rateLimiter = rl }
}

// WithMetrics records HTTP and rate limit metrics and serves them
func WithMetrics(m *monitoring.MetricsCollector) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracing opens a span per request
func WithTracing(t *monitoring.TracingManager) Option {
	return func(s *Service) { s.tracing = t }
}

// WithHealth serves the health report of h
func WithHealth(h *monitoring.HealthManager) Option {
	return func(s *Service) { s.health = h }
}

// NewService creates the gateway and registers its routes
func NewService(cfg *config.Config, log *logger.Logger, opts ...Option) *Service {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// notblank is a registered non-standard validator, so this cannot fail
	_ = validate.RegisterValidation("notblank", validators.NotBlank)

	s := &Service{
		router:        mux.NewRouter(),
		validate:      validate,
		logger:        log,
		allowedOrigin: cfg.Server.AllowedOrigin,
		maxBodyBytes:  cfg.Server.MaxBodyBytes,
		metricsPath:   cfg.Monitoring.MetricsPath,
		healthPath:    cfg.Monitoring.HealthPath,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = monitoring.NewMetricsCollector(cfg.Monitoring.ServiceName)
	}
	if s.tracing == nil {
		s.tracing = monitoring.NewNoopTracingManager(cfg.Monitoring.ServiceName)
	}
	if s.health == nil {
		s.health = monitoring.NewHealthManager(cfg.Monitoring.ServiceName, cfg.Monitoring.ServiceVersion)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.recoveryMiddleware(s.router),
		ReadTimeout:       seconds(cfg.Server.ReadTimeout),
		ReadHeaderTimeout: seconds(cfg.Server.ReadTimeout),
		WriteTimeout:      seconds(cfg.Server.WriteTimeout),
		IdleTimeout:       seconds(cfg.Server.IdleTimeout),
	}

	return s
}

// Router exposes the router so other handlers, such as the web UI, share the
// middleware chain
func (s *Service) Router() *mux.Router {
	return s.router
}

// Handler returns the fully wrapped HTTP handler
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Stop is called
func (s *Service) Start() error {
	s.logger.WithComponent("gateway").WithField("addr", s.server.Addr).Info("Starting gateway")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests until ctx expires
func (s *Service) Stop(ctx context.Context) error {
	s.logger.WithComponent("gateway").Info("Stopping gateway")
	return s.server.Shutdown(ctx)
}

func (s *Service) setupRoutes() {
	s.router.HandleFunc(s.healthPath, s.health.HTTPHandler()).Methods(http.MethodGet)
	s.router.Handle(s.metricsPath, s.metrics.Handler()).Methods(http.MethodGet)

	if s.generator != nil {
		// OPTIONS must match the route or mux answers preflights with 405
		// before any middleware runs
		s.router.HandleFunc(GeneratePath, s.handleGenerate).Methods(http.MethodPost, http.MethodOptions)
	}
}

func (s *Service) setupMiddleware() {
	mm := monitoring.NewMonitoringMiddleware(s.metrics, s.tracing, s.logger)

	s.router.Use(s.corsMiddleware)
	s.router.Use(s.securityHeadersMiddleware)
	s.router.Use(mm.HTTPMiddleware)
	s.router.Use(s.rateLimitMiddleware)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
