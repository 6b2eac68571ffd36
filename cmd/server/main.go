package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"golang-admin-command-runner/internal/api/handlers"
	"golang-admin-command-runner/internal/api/routes"
	"golang-admin-command-runner/internal/config"
	"golang-admin-command-runner/internal/repository"
	"golang-admin-command-runner/internal/services/command_audit"
	"golang-admin-command-runner/internal/services/command_runner"
	"golang-admin-command-runner/internal/services/notifier"
	"golang-admin-command-runner/internal/services/operations"
	"golang-admin-command-runner/pkg/database"
	"golang-admin-command-runner/pkg/ratelimit"
	"golang-admin-command-runner/pkg/redis"
)

func main() {
	ctxCancel, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logrusLevel, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.WithError(err).Fatal("Failed to parse log level")
	}

	logger.SetLevel(logrusLevel)

	// Set Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Initialize database
	db, err := database.NewDB(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := repository.AutoMigrate(db.DB); err != nil {
			logger.WithError(err).Fatal("Failed to migrate database")
		}
	}

	// Initialize repositories
	commandRunRepo := repository.NewCommandRunRepository(db.DB)
	userRepo := repository.NewUserRepository(db.DB)
	unitOfWork := repository.NewUnitOfWork(db.DB)

	// Command table
	registry := operations.NewRegistry(logger)
	err = operations.RegisterBuiltins(registry, operations.BuiltinDeps{
		Version: cfg.Server.Version,
		DB:      db,
		Migrate: func(ctx context.Context) error {
			return repository.AutoMigrate(db.DB.WithContext(ctx))
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to register builtin commands")
	}
	if cfg.Runner.CatalogPath != "" {
		catalog, err := operations.LoadCatalog(cfg.Runner.CatalogPath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load command catalog")
		}
		if err := operations.RegisterCatalog(registry, catalog, cfg.Runner.TerminationGrace); err != nil {
			logger.WithError(err).Fatal("Failed to register command catalog")
		}
		logger.WithField("commands", len(catalog.Commands)).Info("Command catalog loaded")
	}

	// Publishers of finished runs
	var publishers []notifier.Publisher
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize Redis client")
		}
		defer redisClient.Close()
		publishers = append(publishers, notifier.NewRedisStreamPublisher(redisClient, cfg.Redis.CommandRunStream))
	}
	if cfg.Telegram.Enabled() {
		bot, err := notifier.NewTelegramBot(cfg.Telegram.BotToken)
		if err != nil {
			logger.WithError(err).Fatal("failed to create telegram bot")
		}
		telegramPublisher, err := notifier.NewTelegramPublisher(bot, cfg.Telegram.ChatID)
		if err != nil {
			logger.WithError(err).Fatal("failed to create telegram publisher")
		}
		publishers = append(publishers, telegramPublisher)
	}
	publisher := notifier.NewMulti(logger, publishers...)
	logger.WithField("publishers", publisher.Len()).Info("Command run publishers configured")

	// Initialize services
	executor := command_runner.NewExecutor(registry, logger, cfg.Runner.MaxOutputBytes)
	auditService := command_audit.NewCommandAuditService(&cfg.Runner, logger, executor, commandRunRepo, userRepo, unitOfWork, publisher)

	runRateLimiter := ratelimit.NewKeyedLimiter(cfg.RateLimit, logger)
	runRateLimiter.StartCleanupExpired(ctxCancel)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, logger, cfg)
	commandRunHandler := handlers.NewCommandRunHandler(auditService, registry, logger)

	// Setup routes
	routes.SetupRoutes(router, healthHandler, commandRunHandler, runRateLimiter, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	cancel()
	runRateLimiter.StopCleanupExpired()

	// Commands in flight are allowed to finish and be recorded
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	} else {
		logger.Info("HTTP server shutdown completed successfully")
	}
}
