package repository_test

import (
	"context"
	"testing"

	"verify_keep/internal/model"
	"verify_keep/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityRepository(t *testing.T) {
	ctx := context.Background()

	newAccount := func(email string) *model.Account {
		return &model.Account{AccountID: uuid.New(), Email: email, DisplayName: "Ada"}
	}

	t.Run("Create and FindByEmail", func(t *testing.T) {
		repo := repository.NewGormIdentityRepository(newTestDB(t))
		account := newAccount("ada@example.com")
		require.NoError(t, repo.Create(ctx, account))

		found, err := repo.FindByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, account.AccountID, found.AccountID)
		assert.Equal(t, "Ada", found.DisplayName)
		assert.False(t, found.EmailVerified)
		assert.Nil(t, found.PasswordHash)
	})

	t.Run("Duplicate email is a conflict", func(t *testing.T) {
		repo := repository.NewGormIdentityRepository(newTestDB(t))
		require.NoError(t, repo.Create(ctx, newAccount("ada@example.com")))

		err := repo.Create(ctx, newAccount("ada@example.com"))
		assert.ErrorIs(t, err, model.ErrConflict)
	})

	t.Run("FindByEmail not found", func(t *testing.T) {
		repo := repository.NewGormIdentityRepository(newTestDB(t))
		found, err := repo.FindByEmail(ctx, "nobody@example.com")
		assert.Nil(t, found)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("SetEmailVerified", func(t *testing.T) {
		repo := repository.NewGormIdentityRepository(newTestDB(t))
		require.NoError(t, repo.Create(ctx, newAccount("ada@example.com")))

		require.NoError(t, repo.SetEmailVerified(ctx, "ada@example.com"))
		found, err := repo.FindByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.True(t, found.EmailVerified)

		assert.ErrorIs(t, repo.SetEmailVerified(ctx, "nobody@example.com"), model.ErrNotFound)
	})

	t.Run("UpdatePasswordHash", func(t *testing.T) {
		repo := repository.NewGormIdentityRepository(newTestDB(t))
		require.NoError(t, repo.Create(ctx, newAccount("ada@example.com")))

		require.NoError(t, repo.UpdatePasswordHash(ctx, "ada@example.com", "$2a$10$hash"))
		found, err := repo.FindByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.NotNil(t, found.PasswordHash)
		assert.Equal(t, "$2a$10$hash", *found.PasswordHash)

		assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, "nobody@example.com", "x"), model.ErrNotFound)
	})
}
