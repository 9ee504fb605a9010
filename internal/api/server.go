package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/codeshelf/Codeshelf-sub002/internal/commissioning/aisleimport"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/config"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/logging"
	"github.com/codeshelf/Codeshelf-sub002/internal/lighting"
	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// LEDPublisher sends LED maps to controllers after a change made through
// the API. *lighting.Publisher satisfies it.
type LEDPublisher interface {
	PublishAisleMap(m lighting.AisleMap) error
	PublishControllerMap(m lighting.ControllerMap) error
}

// ConnectionChecker reports broker connectivity for the health endpoint.
type ConnectionChecker interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Store    *location.Store
	Importer *aisleimport.Service

	// Publisher is optional; without it LED maps are not re-sent after
	// controller, endcap or offset changes.
	Publisher LEDPublisher

	// MQTT is optional and only reported by /health and /system/metrics.
	MQTT ConnectionChecker

	// DB is optional; its pool statistics appear in /system/metrics.
	DB DBStatter

	// Receipts is optional; without it the import history route answers 404.
	Receipts ReceiptLister

	// Metrics, when set, is served at MetricsPath outside /api/v1.
	Metrics     http.Handler
	MetricsPath string

	Version string
}

// Server is the HTTP API server for Codeshelf.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	logger      *logging.Logger
	store       *location.Store
	importer    *aisleimport.Service
	publisher   LEDPublisher
	mqtt        ConnectionChecker
	db          DBStatter
	receipts    ReceiptLister
	metrics     http.Handler
	metricsPath string
	version     string
	startTime   time.Time

	hub    *Hub
	server *http.Server
	errc   chan error
	cancel context.CancelFunc // cancels the hub on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called. Finished imports are
// broadcast on the "aisles.imported" WebSocket channel.
//
// Parameters:
//   - deps: Required dependencies (config, logger, store, importer)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("location store is required")
	}
	if deps.Importer == nil {
		return nil, fmt.Errorf("aisle importer is required")
	}

	s := &Server{
		cfg:         deps.Config,
		logger:      deps.Logger,
		store:       deps.Store,
		importer:    deps.Importer,
		publisher:   deps.Publisher,
		mqtt:        deps.MQTT,
		db:          deps.DB,
		receipts:    deps.Receipts,
		metrics:     deps.Metrics,
		metricsPath: deps.MetricsPath,
		version:     deps.Version,
		startTime:   time.Now(),
		hub:         NewHub(deps.Config.WebSocket, deps.Logger),
		errc:        make(chan error, 1),
	}
	s.importer.OnImport(func(res *aisleimport.ImportResult) {
		s.hub.Broadcast(EventAislesImported, res)
	})
	return s, nil
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub and launches the HTTP listener in a
// background goroutine. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Parent context for the hub
//
// Returns:
//   - error: Reserved for listener setup failures
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	if s.cfg.JWT.Secret == "" {
		s.logger.Warn("API JWT secret not set, mutating routes are unauthenticated")
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
			s.errc <- fmt.Errorf("api server: %w", err)
		}
	}()

	return nil
}

// Run starts the server and blocks until ctx is cancelled or the listener
// fails, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return s.Close()
	case err := <-s.errc:
		//nolint:errcheck // Listener already failed; its error is the one reported
		s.Close()
		return err
	}
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
