package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipsum/backend/internal/api"
	"github.com/clipsum/backend/internal/auth"
	"github.com/clipsum/backend/internal/database"
	"github.com/clipsum/backend/internal/mail"
	"github.com/clipsum/backend/internal/storage"
	"github.com/clipsum/backend/internal/users"
	"github.com/clipsum/backend/internal/videos"
	"github.com/clipsum/backend/pkg/config"
	"github.com/clipsum/backend/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting clipsum server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Object storage gateway
	store, err := storage.NewS3Store(context.Background(), cfg.S3)
	if err != nil {
		logger.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	// Email dispatcher; falls back to log-only without SMTP credentials
	mailer := mail.New(cfg.SMTP, logger)
	if _, logOnly := mailer.(*mail.LogMailer); logOnly {
		logger.Warn("SMTP not configured, outgoing mail will only be logged")
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService, mailer, cfg.OTP.Expiry())
	userService := users.NewService(db)
	videoService := videos.NewService(db, store, logger)

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:            db,
		Logger:        logger,
		JWTService:    jwtService,
		AuthService:   authService,
		UserService:   userService,
		VideoService:  videoService,
		Development:   cfg.Server.IsDevelopment(),
		RateLimitReqs: cfg.RateLimit.Requests,
		RateLimitSecs: cfg.RateLimit.WindowSeconds,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
