package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultAddr is the default webhook listen address.
	DefaultAddr = ":8080"

	// DefaultReadHeaderTimeout bounds how long a client may take to send headers.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds a whole webhook call. The platform gives up
	// after about eight seconds, so there is no point in running longer.
	DefaultWriteTimeout = 15 * time.Second

	// limiterCleanupInterval is how often idle rate limiters are dropped.
	limiterCleanupInterval = time.Minute
)

// HTTPServerConfig configures the webhook server.
type HTTPServerConfig struct {
	Addr    string
	Limiter *RateLimiter
	Health  HealthInfo
	Logger  *slog.Logger
}

// HTTPServer serves the skill webhook and health endpoints.
type HTTPServer struct {
	sc         *ServerContext
	health     *HealthChecker
	limiter    *RateLimiter
	handler    http.Handler
	httpServer *http.Server
	addr       string
	logger     *slog.Logger
}

// NewHTTPServer wires the webhook and health endpoints onto a new mux.
func NewHTTPServer(sc *ServerContext, config HTTPServerConfig) *HTTPServer {
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	health := NewHealthChecker(sc, config.Health)
	skillHandler := NewSkillHandler(sc.Skill(), config.Limiter, sc.Metrics(), config.Logger)

	mux := http.NewServeMux()
	mux.Handle(SkillPath, otelhttp.NewHandler(skillHandler, "skill"))
	health.RegisterHealthEndpoints(mux)

	return &HTTPServer{
		sc:      sc,
		health:  health,
		limiter: config.Limiter,
		handler: mux,
		addr:    config.Addr,
		logger:  config.Logger,
	}
}

// Handler returns the root handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// Start listens and serves until Shutdown. It returns nil after a graceful
// shutdown.
func (s *HTTPServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return s.sc.Context() },
	}

	if s.limiter != nil {
		go s.limiter.Run(s.sc.Context(), limiterCleanupInterval)
	}

	s.logger.Info("Starting webhook server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown marks the server not ready, drains in-flight requests and then
// shuts down the server context.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	var errs []error
	if s.httpServer != nil {
		s.logger.Info("Shutting down webhook server")
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.sc.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
