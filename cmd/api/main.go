package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bh1mart/bh1mart/internal/auth"
	"github.com/bh1mart/bh1mart/internal/background"
	"github.com/bh1mart/bh1mart/internal/config"
	"github.com/bh1mart/bh1mart/internal/database"
	"github.com/bh1mart/bh1mart/internal/handlers"
	middlewareCustom "github.com/bh1mart/bh1mart/internal/middleware"
	"github.com/bh1mart/bh1mart/internal/repositories"
	"github.com/bh1mart/bh1mart/internal/routes"
	"github.com/bh1mart/bh1mart/internal/services"
	pkghttp "github.com/bh1mart/bh1mart/pkg/http"
	pkglogger "github.com/bh1mart/bh1mart/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	attemptRepo := repositories.NewAttemptRepository(db)
	deviceRepo := repositories.NewDeviceSecurityRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	orderLogRepo := repositories.NewOrderLogRepository(db)
	productRepo := repositories.NewProductRepository(db)
	foodRequestRepo := repositories.NewFoodRequestRepository(db)
	adminRepo := repositories.NewAdminRepository(db)

	// Abuse engine
	abuseService := services.NewAbuseService(attemptRepo, services.AbuseConfig{
		MaxFailedAttempts: cfg.Abuse.MaxFailedAttempts,
		BlockDuration:     cfg.Abuse.BlockDuration,
	}, logger)
	deviceService := services.NewDeviceSecurityService(deviceRepo, cfg.Abuse.MaxFailedAttempts, logger)
	gate := services.NewAdmissionGate(abuseService, deviceService)
	validator := services.NewOrderValidator(orderRepo, cfg.Abuse.MaxCancelledOrders, logger)

	// Operator notifications
	var notifier services.Notifier = services.NoopNotifier{}
	if cfg.Email.Enabled {
		sesNotifier, err := services.NewAWSSESNotifier(
			context.Background(),
			cfg.Email.AWSRegion,
			cfg.Email.FromAddress,
			cfg.Email.OperatorAddress,
			logger,
		)
		if err != nil {
			logger.Error("failed to initialize email notifier", slog.Any("error", err))
			os.Exit(1)
		}
		notifier = sesNotifier
	}

	// Auth
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	totpManager := auth.NewTOTPManager("bh1mart")
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   200,
		RandomDelayMs: 100,
	})

	// Services
	auditLogger := pkglogger.NewAuditLogger(logger)
	orderService := services.NewOrderService(
		orderRepo, orderLogRepo, gate, validator, abuseService, deviceService,
		notifier, cfg.Store.WhatsAppNumber, logger, auditLogger,
	)
	foodRequestService := services.NewFoodRequestService(foodRequestRepo, gate, notifier, logger)
	productService := services.NewProductService(productRepo, logger)
	adminService := services.NewAdminService(
		adminRepo, deviceService, orderLogRepo,
		tokenManager, totpManager, timingDelay, logger, auditLogger,
	)

	// Bootstrap the first operator account if configured.
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail != "" && adminPassword != "" {
		logger.Info("bootstrapping admin account",
			pkglogger.RedactedAttr("email", adminEmail, cfg.Server.Env))
		bootstrapCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := adminService.EnsureAdmin(bootstrapCtx, adminEmail, adminPassword, "Admin"); err != nil {
			logger.Error("failed to ensure admin account", slog.Any("error", err))
		}
		cancel()
	} else {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin bootstrap")
	}

	// Handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	orderHandler := handlers.NewOrderHandler(orderService, ipConfig)
	foodRequestHandler := handlers.NewFoodRequestHandler(foodRequestService, ipConfig)
	productHandler := handlers.NewProductHandler(productService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Retention housekeeping
	cleanupManager := background.NewCleanupManager(
		attemptRepo, orderLogRepo, logger,
		cfg.Abuse.CleanupInterval, cfg.Abuse.LogRetention,
	)

	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.Env)
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	submitLimit := middlewareCustom.RateLimitConfig{
		Requests: cfg.Abuse.SubmitRatePerWindow,
		Window:   cfg.Abuse.SubmitRateWindow,
	}

	router.Route("/api", func(r chi.Router) {
		routes.RegisterRoutes(r, orderHandler, foodRequestHandler, productHandler, adminHandler, tokenManager, submitLimit)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
