package server

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/LearnReact/internal/api/http"
	"github.com/GriffinCanCode/LearnReact/internal/api/middleware"
	"github.com/GriffinCanCode/LearnReact/internal/api/ws"
	"github.com/GriffinCanCode/LearnReact/internal/domain/content"
	"github.com/GriffinCanCode/LearnReact/internal/domain/sandbox"
	"github.com/GriffinCanCode/LearnReact/internal/domain/workspace"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/config"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/logging"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/LearnReact/internal/providers/clipboard"
	"github.com/GriffinCanCode/LearnReact/internal/providers/evaluator"
	"github.com/GriffinCanCode/LearnReact/internal/providers/search"
	"github.com/GriffinCanCode/LearnReact/internal/providers/storage"
	"github.com/GriffinCanCode/LearnReact/internal/providers/theme"
	"github.com/GriffinCanCode/LearnReact/internal/providers/widgets"
	"github.com/GriffinCanCode/LearnReact/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	config    *config.Config
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	store     *storage.Store
	evaluator *evaluator.Evaluator
	clipboard *clipboard.Hub
	catalog   *content.Catalog
	watcher   *content.Watcher
	workspace *workspace.Manager
	registry  *service.Registry
	progress  *ProgressRecorder
	router    *gin.Engine
	handler   nethttp.Handler

	closeOnce sync.Once
}

// New creates a new server instance
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (_ *Server, err error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Info("Initializing LearnReact server",
		zap.String("addr", cfg.Addr()),
		zap.String("storage", cfg.Storage.Path),
		zap.String("content_dir", cfg.Content.Dir),
	)

	srv := &Server{config: cfg, logger: logger, metrics: monitoring.NewMetrics()}
	defer func() {
		if err != nil {
			srv.Close()
		}
	}()

	srv.store, err = storage.Open(ctx, cfg.Storage.Path, logger.Component("storage"))
	if err != nil {
		return nil, err
	}
	srv.progress = NewProgressRecorder(srv.store, logger.Component("progress"))

	flag := theme.NewFlag(srv.store, cfg.Theme.DefaultDark, logger.Component("theme"))
	if err := flag.Init(ctx); err != nil {
		logger.Warn("Using default theme", zap.Error(err))
	}

	evalCfg := evaluator.DefaultConfig()
	evalCfg.Timeout = cfg.Sandbox.Timeout
	srv.evaluator, err = evaluator.New(evalCfg, cfg.Sandbox.PoolSize, logger.Component("evaluator"))
	if err != nil {
		return nil, err
	}

	srv.clipboard = clipboard.NewHub(clipboard.Config{
		History:  cfg.Clipboard.History,
		MaxBytes: cfg.Clipboard.MaxBytes,
	}, logger.Component("clipboard"))

	srv.catalog, err = content.Open(cfg.Content.Dir, logger.Component("content"), srv.metrics)
	if err != nil {
		return nil, err
	}
	if cfg.Content.Watch && cfg.Content.Dir != "" {
		srv.watcher, err = content.NewWatcher(cfg.Content.Dir, srv.catalog, logger.Component("watcher"))
		if err != nil {
			return nil, err
		}
	}
	logger.Info("Lessons loaded", zap.Int("count", srv.catalog.Len()))

	srv.workspace = workspace.NewManager(workspace.Config{
		IdleTTL:      cfg.Widgets.IdleTTL,
		MaxInstances: cfg.Widgets.MaxInstances,
	}, sandbox.Options{
		Evaluator:      srv.evaluator,
		Clipboard:      srv.clipboard,
		Bindings:       evaluator.DefaultBindings(),
		FeedbackWindow: cfg.Sandbox.CopyFeedbackWindow,
		MaxSourceBytes: cfg.Sandbox.MaxSourceBytes,
		Logger:         logger.Component("sandbox"),
		Metrics:        srv.metrics,
	}, srv.catalog, logger.Component("workspace")).
		WithMetrics(srv.metrics).
		OnComplete(srv.progress.Record)

	srv.registry = service.NewRegistry(logger.Component("registry")).WithMetrics(srv.metrics)
	if err := registerProviders(srv.registry, srv, flag); err != nil {
		return nil, err
	}

	srv.router = newRouter(cfg, logger, srv.metrics)
	http.NewHandlers(http.Deps{
		Catalog:   srv.catalog,
		Workspace: srv.workspace,
		Theme:     flag,
		Store:     srv.store,
		Clipboard: srv.clipboard,
		Registry:  srv.registry,
		Evaluator: srv.evaluator,
		Metrics:   srv.metrics,
		Logger:    logger.Component("http"),
	}).Register(srv.router)

	wsHandler := ws.NewHandler(ws.Config{AllowedOrigins: cfg.Server.CORSOrigins},
		srv.workspace, srv.clipboard, flag, logger.Component("ws"), srv.metrics)
	srv.router.GET("/stream", wsHandler.HandleConnection)
	srv.router.GET("/progress/breaker", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, srv.progress.Status())
	})

	srv.handler = compress(srv.router)

	logger.Info("Server initialized successfully")
	return srv, nil
}

func newRouter(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) *gin.Engine {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Component("access")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSFromOrigins(cfg.Server.CORSOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	return router
}

// compress gzips responses for clients that accept it. WebSocket upgrades
// need the raw connection and skip it.
func compress(next nethttp.Handler) nethttp.Handler {
	gz := gzhttp.GzipHandler(next)
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

func registerProviders(registry *service.Registry, s *Server, flag *theme.Flag) error {
	providers := []service.Provider{
		widgets.NewSandboxProvider(s.workspace),
		widgets.NewQuizProvider(s.workspace),
		search.NewProvider(s.catalog),
		theme.NewProvider(flag),
		clipboard.NewProvider(s.clipboard),
		storage.NewProvider(s.store),
	}
	for _, p := range providers {
		if err := registry.Register(p); err != nil {
			return fmt.Errorf("register %s provider: %w", p.Definition().ID, err)
		}
	}
	return nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() nethttp.Handler {
	return s.handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	go s.workspace.Run(workerCtx)
	if s.watcher != nil {
		go s.watcher.Run(workerCtx)
	}

	srv := &nethttp.Server{
		Addr:              s.config.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases every component. Safe to call more than once.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	s.closeOnce.Do(func() {
		if s.workspace != nil {
			s.workspace.Close()
		}
		if s.clipboard != nil {
			s.clipboard.Close()
		}
		if s.evaluator != nil {
			if err := s.evaluator.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close evaluator: %w", err))
			}
		}
		if s.store != nil {
			if err := s.store.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close storage: %w", err))
			}
		}
		_ = s.logger.Sync()
	})
	return errors.Join(errs...)
}
