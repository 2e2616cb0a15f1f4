//go:generate mockery --name IdentityRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"verify_keep/internal/middleware"
	"verify_keep/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type IdentityRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	SetEmailVerified(ctx context.Context, email string) error
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
}

type gormIdentityRepository struct {
	db *gorm.DB
}

func NewGormIdentityRepository(db *gorm.DB) IdentityRepository {
	return &gormIdentityRepository{db: db}
}

func (r *gormIdentityRepository) Create(ctx context.Context, account *model.Account) error {
	logger := middleware.GetLogger(ctx)
	result := r.db.WithContext(ctx).Create(account)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			logger.Warn("Account already exists", "account_id", account.AccountID)
			return model.ErrConflict
		}
		logger.Error("Error creating account in DB", "error", result.Error, "account_id", account.AccountID)
		return fmt.Errorf("gormIdentityRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormIdentityRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	logger := middleware.GetLogger(ctx)
	var account model.Account

	result := r.db.WithContext(ctx).Where("email = ?", email).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding account by email in DB", "error", result.Error)
		return nil, fmt.Errorf("gormIdentityRepository.FindByEmail: %w", result.Error)
	}
	return &account, nil
}

func (r *gormIdentityRepository) SetEmailVerified(ctx context.Context, email string) error {
	logger := middleware.GetLogger(ctx)
	result := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("email = ?", email).
		Update("email_verified", true)
	if result.Error != nil {
		logger.Error("Error setting email verified in DB", "error", result.Error)
		return fmt.Errorf("gormIdentityRepository.SetEmailVerified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormIdentityRepository) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	logger := middleware.GetLogger(ctx)
	result := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("email = ?", email).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		logger.Error("Error updating password hash in DB", "error", result.Error)
		return fmt.Errorf("gormIdentityRepository.UpdatePasswordHash: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// isDuplicateKeyError は一意制約違反かどうかを判定します
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
