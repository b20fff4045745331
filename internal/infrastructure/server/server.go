package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/webbridge/internal/api/http"
	"github.com/GriffinCanCode/webbridge/internal/api/middleware"
	"github.com/GriffinCanCode/webbridge/internal/api/ws"
	"github.com/GriffinCanCode/webbridge/internal/bridge/dispatch"
	"github.com/GriffinCanCode/webbridge/internal/domain/window"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/config"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/webbridge/internal/shared/paths"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	manager  *window.Manager
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	registry *prometheus.Registry
}

// Option customizes a server before routes are mounted.
type Option func(*options)

type options struct {
	logger   *logging.Logger
	registry *prometheus.Registry
}

// WithLogger replaces the logger built from the logging config.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegistry collects metrics into reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// NewServer creates a new server instance with an empty window manager.
// Windows are opened on Manager() before Run.
func NewServer(cfg *config.Config, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development)
	}
	reg := o.registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	logger.Info("Initializing bridge host",
		zap.String("addr", cfg.Addr()),
		zap.String("namespace", cfg.Bridge.Namespace),
		zap.Bool("strict", cfg.Bridge.Strict),
	)

	// Metrics first (needed by other components)
	metrics := monitoring.NewMetrics(reg)
	tracer := tracing.New("bridge", logger.Component("trace"))

	env := window.Env{
		Namespace: cfg.Bridge.Namespace,
		Logger:    logger.Component("window"),
		Metrics:   metrics,
		Tracer:    tracer,
		Dispatch: dispatch.Options{
			Strict:      cfg.Bridge.Strict,
			MaxInFlight: cfg.Bridge.MaxInFlight,
			CallTimeout: cfg.Bridge.CallTimeout,
		},
	}
	if cfg.Bridge.Breaker {
		env.Breaker = &resilience.Settings{
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
		}
	}
	manager := window.NewManager(env)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSConfig{
		Origins: cfg.Server.AllowedOrigins,
		MaxAge:  middleware.DefaultCORSConfig().MaxAge,
	}))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			IdleTTL:           middleware.DefaultRateLimitConfig().IdleTTL,
			Skip:              middleware.IsWebSocket,
		}))
	}

	handlers := apihttp.NewHandlers(manager, metrics, logger.Component("http"))
	handlers.Register(router)

	wsCfg := ws.DefaultConfig()
	wsCfg.MessagesPerSecond = cfg.RateLimit.MessagesPerSecond
	wsCfg.Burst = 2 * cfg.RateLimit.MessagesPerSecond
	if !cfg.RateLimit.Enabled {
		wsCfg.MessagesPerSecond = 0
	}
	wsHandler := ws.NewHandler(manager, wsCfg, metrics, logger.Component("ws"))
	router.GET(paths.SocketPattern, wsHandler.HandleConnection)

	router.GET(paths.Metrics, monitoring.Handler(reg))
	if cfg.Logging.Development {
		router.Any(paths.LogLevel, gin.WrapH(logger.Level()))
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		manager:  manager,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		tracer:   tracer,
		registry: reg,
	}
}

// Manager returns the window manager serving the routes.
func (s *Server) Manager() *window.Manager {
	return s.manager
}

// Logger returns the server logger.
func (s *Server) Logger() *logging.Logger {
	return s.logger
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until Shutdown.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.http = &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown detaches every page, stops accepting requests and waits for
// in-flight requests up to the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	// Closing windows ends their WebSocket handlers, which net/http does not
	// wait for after hijacking.
	s.manager.CloseAll()

	var err error
	if s.http != nil {
		ctx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()
		if err = s.http.Shutdown(ctx); err != nil {
			s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
			err = fmt.Errorf("failed to shut down http server: %w", err)
		}
	}

	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()
	return err
}
