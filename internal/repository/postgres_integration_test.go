//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"verify_keep/internal/config"
	"verify_keep/internal/model"
	"verify_keep/internal/repository"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pgDB *gorm.DB

// TestMain は postgres コンテナを起動し、統合テスト終了後に破棄します
func TestMain(m *testing.M) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=user",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=verify_keep",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start PostgreSQL resource: %s", err)
	}

	// devcontainer からは TEST_DB_HOST=host.docker.internal を指定する
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		host = "localhost"
	}
	dsn := fmt.Sprintf("postgres://user:secret@%s:%s/verify_keep?sslmode=disable", host, resource.GetPort("5432/tcp"))

	if err := pool.Retry(func() error {
		var errRetry error
		pgDB, errRetry = repository.NewDB(config.DatabaseConfig{Driver: "postgres", URL: dsn}, logger)
		if errRetry != nil {
			logger.Warn("Retry: DB connection attempt failed.", slog.Any("error", errRetry))
		}
		return errRetry
	}); err != nil {
		if pErr := pool.Purge(resource); pErr != nil {
			log.Printf("Warning: Could not purge resource: %s", pErr)
		}
		log.Fatalf("Could not connect to PostgreSQL container: %s", err)
	}

	if err := repository.AutoMigrate(pgDB); err != nil {
		log.Fatalf("Could not migrate database: %s", err)
	}

	code := m.Run()

	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge PostgreSQL resource: %s", err)
	}
	os.Exit(code)
}

func clearPostgres(t *testing.T) {
	t.Helper()
	require.NoError(t, pgDB.Where("1 = 1").Delete(&model.VerificationToken{}).Error)
	require.NoError(t, pgDB.Where("1 = 1").Delete(&model.Account{}).Error)
}

func TestPostgres_TokenLifecycle(t *testing.T) {
	clearPostgres(t)
	ctx := context.Background()
	repo := repository.NewGormTokenRepository(pgDB)
	now := time.Now().UTC().Truncate(time.Microsecond)

	token := &model.VerificationToken{
		Flow:       model.FlowEmailVerification,
		SubjectKey: "pg@example.com",
		Secret:     "111111",
		CreatedAt:  now,
		ExpiresAt:  now.Add(10 * time.Minute),
	}
	require.NoError(t, repo.Upsert(ctx, token))
	require.NoError(t, repo.MarkUsed(ctx, model.FlowEmailVerification, "pg@example.com", "111111", now))
	assert.ErrorIs(t, repo.MarkUsed(ctx, model.FlowEmailVerification, "pg@example.com", "111111", now), model.ErrTokenStale)

	token.Secret = "222222"
	require.NoError(t, repo.Upsert(ctx, token))

	found, err := repo.Find(ctx, model.FlowEmailVerification, "pg@example.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", found.Secret)
	assert.False(t, found.Used)
	assert.Nil(t, found.UsedAt)

	expiredAt := now.Add(11 * time.Minute)
	assert.ErrorIs(t, repo.MarkUsed(ctx, model.FlowEmailVerification, "pg@example.com", "222222", expiredAt), model.ErrTokenStale)
}

func TestPostgres_DuplicateAccount(t *testing.T) {
	clearPostgres(t)
	ctx := context.Background()
	repo := repository.NewGormIdentityRepository(pgDB)

	require.NoError(t, repo.Create(ctx, &model.Account{AccountID: uuid.New(), Email: "dup@example.com"}))
	err := repo.Create(ctx, &model.Account{AccountID: uuid.New(), Email: "dup@example.com"})
	assert.ErrorIs(t, err, model.ErrConflict)
}
