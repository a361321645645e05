package alpaca

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ashdown-obs/roofsentry/internal/astro"
	"github.com/ashdown-obs/roofsentry/internal/device"
	"github.com/ashdown-obs/roofsentry/internal/infrastructure/config"
	"github.com/ashdown-obs/roofsentry/internal/infrastructure/logging"
	"github.com/ashdown-obs/roofsentry/internal/safety"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the Alpaca server.
type Deps struct {
	Config  config.AlpacaConfig
	Site    config.SiteConfig
	Logger  *logging.Logger
	Info    device.Info
	State   *device.State
	Windows *astro.Calculator // optional: setup page forecast
	History *safety.History   // optional: setup page recent decisions
	Version string
}

// Server is the Alpaca HTTP server.
//
// It manages the HTTP listener, routes and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg     config.AlpacaConfig
	site    config.SiteConfig
	logger  *logging.Logger
	info    device.Info
	state   *device.State
	windows *astro.Calculator
	history *safety.History
	version string
	server  *http.Server
}

// New creates a new Alpaca server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, device info, state)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.State == nil {
		return nil, fmt.Errorf("device state is required")
	}

	return &Server{
		cfg:     deps.Config,
		site:    deps.Site,
		logger:  deps.Logger,
		info:    deps.Info,
		state:   deps.State,
		windows: deps.Windows,
		history: deps.History,
		version: deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server is stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		s.logger.Info("alpaca server starting", "address", s.server.Addr)
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("alpaca server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the Alpaca server.
//
// It waits up to 10 seconds for in-flight requests to complete, then
// forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("alpaca server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down alpaca server: %w", err)
	}
	return nil
}

// HealthCheck verifies the Alpaca server is running.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("alpaca health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("alpaca server not started")
	}

	return nil
}
