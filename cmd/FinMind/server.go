package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sebuszqo/FinMind/internal/amqp"
	"github.com/sebuszqo/FinMind/internal/auth"
	"github.com/sebuszqo/FinMind/internal/cache"
	"github.com/sebuszqo/FinMind/internal/config"
	database "github.com/sebuszqo/FinMind/internal/db"
	"github.com/sebuszqo/FinMind/internal/finance/application"
	"github.com/sebuszqo/FinMind/internal/finance/infrastructure"
	"github.com/sebuszqo/FinMind/internal/finance/interfaces"
	"github.com/sebuszqo/FinMind/internal/log"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	router      http.Handler
	authHandler *auth.Handler
	authService *auth.Service
	finance     interfaces.Handlers
	health      func(ctx context.Context) map[string]string
	logger      *log.Logger
}

func NewServer(authService *auth.Service, finance interfaces.Handlers, health func(ctx context.Context) map[string]string, logger *log.Logger) *Server {
	s := &Server{
		authHandler: auth.NewHandler(authService),
		authService: authService,
		finance:     finance,
		health:      health,
		logger:      logger.WithComponent(log.ComponentHTTP),
	}
	s.RegisterRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) RegisterRoutes() {
	publicRoutes := http.NewServeMux()
	publicRoutes.HandleFunc("POST /api/auth/register", s.authHandler.HandleRegister)
	publicRoutes.HandleFunc("POST /api/auth/login", s.authHandler.HandleLogin)
	publicRoutes.HandleFunc("GET /api/ready", s.handleReady)
	publicRoutes.HandleFunc("/api/", notFoundHandler)

	protectedRoutes := http.NewServeMux()
	s.finance.RegisterRoutes(protectedRoutes, s.authService.JWTAccessTokenMiddleware())
	protectedRoutes.HandleFunc("/api/protected/", notFoundHandler)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.HandleFunc("/", notFoundHandler)

	s.router = s.loggingMiddleware(mainRouter)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	stats := s.health(r.Context())
	if stats["status"] != "up" {
		interfaces.RespondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "database": stats})
		return
	}
	interfaces.RespondJSON(w, http.StatusOK, map[string]any{"status": "ready", "database": stats})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	interfaces.RespondError(w, http.StatusNotFound, "Path not found")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.InfoContext(r.Context(), "request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rec.status,
			log.FieldDuration, time.Since(start).Milliseconds(),
		)
	})
}

// serve wires the application and blocks until ctx is cancelled, then
// drains in-flight requests.
func serve(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	if err := database.RunMigrations(cfg.DBConnectionString, database.Up); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	dbService, err := database.NewDBService(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer dbService.Close()

	resultCache, closeCache, err := newCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	publisher, closePublisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)
	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)
	budgetRepo := infrastructure.NewBudgetRepository(dbService.DB)
	goalRepo := infrastructure.NewGoalRepository(dbService.DB)

	dashboardService := application.NewDashboardService(transactionRepo, categoryRepo, budgetRepo, goalRepo, resultCache, logger)
	transactionService := application.NewTransactionService(transactionRepo, dashboardService, logger)
	categoryService := application.NewCategoryService(categoryRepo, dashboardService, logger)
	budgetService := application.NewBudgetService(budgetRepo, categoryRepo, transactionRepo, dashboardService, logger)
	goalService := application.NewGoalService(goalRepo, dashboardService, logger)
	exportService := application.NewExportService(transactionRepo, logger)
	alertService := application.NewAlertService(budgetRepo, categoryRepo, transactionRepo, publisher, dashboardService, logger)

	authService := auth.NewService(
		auth.NewUserRepository(dbService.DB),
		auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL),
		logger,
	)

	server := NewServer(authService, interfaces.Handlers{
		Transactions: interfaces.NewTransactionHandler(transactionService, exportService, logger),
		Categories:   interfaces.NewCategoryHandler(categoryService, logger),
		Budgets:      interfaces.NewBudgetHandler(budgetService, logger),
		Goals:        interfaces.NewGoalHandler(goalService, logger),
		Dashboard:    interfaces.NewDashboardHandler(dashboardService, logger),
	}, dbService.Health, logger)

	scheduler, err := startAlertScheduler(cfg.AlertSchedule, alertService, logger)
	if err != nil {
		return fmt.Errorf("start alert scheduler: %w", err)
	}
	defer func() { <-scheduler.Stop().Done() }()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// newCache picks Redis when REDIS_ADDR is set and the in-process LRU otherwise.
func newCache(ctx context.Context, cfg *config.Config, logger *log.Logger) (cache.Cache, func(), error) {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache(cfg.CacheSize, cfg.CacheTTL), func() {}, nil
	}
	redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.CacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize cache: %w", err)
	}
	logger.WithComponent(log.ComponentCache).Info("using redis cache", "addr", cfg.RedisAddr)
	return redisCache, func() { _ = redisCache.Close() }, nil
}

// newPublisher connects to the broker when AMQP_URL is set. Without it alerts
// are only logged.
func newPublisher(cfg *config.Config, logger *log.Logger) (application.AlertPublisher, func(), error) {
	if cfg.AMQPURL == "" {
		return application.NewLogPublisher(logger), func() {}, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize amqp: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}
