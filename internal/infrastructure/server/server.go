package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/termcore/internal/api/http"
	"github.com/GriffinCanCode/termcore/internal/api/middleware"
	"github.com/GriffinCanCode/termcore/internal/api/ws"
	"github.com/GriffinCanCode/termcore/internal/infrastructure/config"
	"github.com/GriffinCanCode/termcore/internal/infrastructure/logging"
	"github.com/GriffinCanCode/termcore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/termcore/internal/providers/system"
	"github.com/GriffinCanCode/termcore/internal/providers/terminal"
	"github.com/GriffinCanCode/termcore/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	manager  *terminal.Manager
	registry *service.Registry
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		var err error
		logger, err = logging.New(logging.Config{Level: cfg.Logging.Level})
		if err != nil {
			return nil, err
		}
	}
	return New(cfg, logger, prometheus.NewRegistry())
}

// New builds a server around an existing logger and metrics registry
func New(cfg *config.Config, logger *logging.Logger, reg *prometheus.Registry) (*Server, error) {
	logger.Info("Initializing termcore server",
		zap.String("addr", cfg.Addr()),
		zap.String("shell", cfg.Terminal.Shell),
		zap.String("read_mode", cfg.Terminal.ReadMode),
		zap.Int("max_sessions", cfg.Terminal.MaxSessions),
	)

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(reg)

	opts, err := cfg.TerminalOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = logger.Component("terminal")
	opts.Metrics = metrics
	if cfg.Terminal.BuiltinsFile != "" {
		logger.Info("Loaded builtin texts", zap.String("file", cfg.Terminal.BuiltinsFile))
	}

	manager := terminal.NewManager(opts, cfg.Terminal.MaxSessions)

	serviceRegistry := service.NewRegistry()
	if err := serviceRegistry.Register(terminal.NewProvider(manager)); err != nil {
		return nil, fmt.Errorf("failed to register terminal provider: %w", err)
	}
	if err := serviceRegistry.Register(system.NewProvider(manager.Options().Shell)); err != nil {
		return nil, fmt.Errorf("failed to register system provider: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.Server.CORSOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := api.NewHandlers(manager, serviceRegistry, metrics, logger.Component("api"))
	wsHandler := ws.NewHandler(manager, metrics, logger.Component("ws"))

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Sessions
	router.GET("/sessions", handlers.ListSessions)
	router.POST("/sessions", handlers.CreateSession)
	router.GET("/sessions/:id", handlers.GetSession)
	router.POST("/sessions/:id/execute", handlers.ExecuteCommand)
	router.DELETE("/sessions/:id", handlers.DestroySession)
	router.GET("/sessions/:id/stream", wsHandler.HandleConnection)

	// Services
	router.GET("/services", handlers.ListServices)
	router.POST("/services/execute", handlers.ExecuteService)

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	router.GET("/metrics/json", handlers.MetricsSnapshot)

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		manager:  manager,
		registry: serviceRegistry,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Manager returns the session manager behind the routes
func (s *Server) Manager() *terminal.Manager {
	return s.manager
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	addr := s.config.Addr()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops accepting requests and closes every terminal session
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	var shutdownErr error
	if s.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP shutdown failed", zap.Error(err))
			shutdownErr = fmt.Errorf("failed to shut down http server: %w", err)
		}
	}

	count := s.manager.Count()
	s.manager.CloseAll()
	s.logger.Info("Closed terminal sessions", zap.Int("count", count))

	_ = s.logger.Sync()

	return shutdownErr
}
