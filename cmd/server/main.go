// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"verify_keep/internal/config"
	"verify_keep/internal/handlers"
	"verify_keep/internal/middleware"
	"verify_keep/internal/repository"
	"verify_keep/internal/service"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	configDir := pflag.StringP("config", "c", "configs", "directory containing config.yaml")
	pflag.Parse()

	// .env は無くてもよい (APP_ 接頭辞の環境変数を補う用途)
	godotenv.Load()

	log.Println("Log Config Loading...")
	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := middleware.NewAppLogger(os.Stderr, cfg.Log.Level)
	slog.SetDefault(logger)
	slog.Info("Application starting...", slog.String("app", cfg.App.Name), slog.String("version", config.AppVersion))

	db, err := repository.NewDB(cfg.Database, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	mailer, err := service.NewMailer(cfg)
	if err != nil {
		slog.Error("Error initializing mailer", slog.Any("error", err))
		os.Exit(1)
	}

	// Dependency Injection
	tokenRepo := repository.NewGormTokenRepository(db)
	identityRepo := repository.NewGormIdentityRepository(db)

	identityProvider := service.NewAccountIdentityProvider(identityRepo)
	tokenService := service.NewTokenService(tokenRepo, identityProvider, mailer, cfg)
	contactService := service.NewContactService(mailer, cfg)

	authHandler := handlers.NewAuthHandler(tokenService)
	contactHandler := handlers.NewContactHandler(contactService)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter, err = middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			slog.Error("Error initializing rate limiter", slog.Any("error", err))
			os.Exit(1)
		}
	}

	router := handlers.NewRouter(handlers.RouterOptions{
		Logger:         logger,
		CORS:           cfg.CORS,
		HandlerTimeout: cfg.Server.HandlerTimeout,
		RateLimiter:    limiter,
		HealthCheck:    sqlDB.PingContext,
	}, authHandler, contactHandler)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Server.HandlerTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}
	if limiter != nil {
		if err := limiter.Close(ctx); err != nil {
			slog.Error("Error closing rate limiter", slog.Any("error", err))
		}
	}

	log.Println("Server exiting")
}
