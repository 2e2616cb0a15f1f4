// cmd/migrate/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"verify_keep/internal/config"
	"verify_keep/internal/middleware"
	"verify_keep/internal/model"
	"verify_keep/internal/repository"
	"verify_keep/internal/service"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	configDir := pflag.StringP("config", "c", "configs", "directory containing config.yaml")
	seedEmail := pflag.String("seed-email", "", "create an account with this email after migrating")
	seedName := pflag.String("seed-name", "", "display name of the seeded account")
	seedPassword := pflag.String("seed-password", "", "password of the seeded account (optional)")
	pflag.Parse()

	godotenv.Load()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := middleware.NewAppLogger(os.Stderr, cfg.Log.Level)
	slog.SetDefault(logger)

	db, err := repository.NewDB(cfg.Database, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	if err := repository.AutoMigrate(db); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("Migration completed")

	if *seedEmail == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = middleware.WithLogger(ctx, logger)

	provider := service.NewAccountIdentityProvider(repository.NewGormIdentityRepository(db))
	account, err := provider.CreateUser(ctx, *seedEmail, *seedName, *seedPassword)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			slog.Warn("Seed account already exists", slog.String("email", *seedEmail))
			return
		}
		slog.Error("Failed to seed account", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("Seed account created", slog.String("account_id", account.AccountID.String()))
}
