//go:generate mockery --name IdentityProvider --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"fmt"

	"verify_keep/internal/middleware"
	"verify_keep/internal/model"
	"verify_keep/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// IdentityProvider はユーザーレコード (検索・メール検証済み化・パスワード設定) を扱います
type IdentityProvider interface {
	GetUserByEmail(ctx context.Context, email string) (*model.Account, error)
	CreateUser(ctx context.Context, email, displayName, password string) (*model.Account, error)
	MarkEmailVerified(ctx context.Context, email string) error
	SetPassword(ctx context.Context, email, newPassword string) error
}

type accountIdentityProvider struct {
	repo repository.IdentityRepository
}

func NewAccountIdentityProvider(repo repository.IdentityRepository) IdentityProvider {
	return &accountIdentityProvider{repo: repo}
}

func (p *accountIdentityProvider) GetUserByEmail(ctx context.Context, email string) (*model.Account, error) {
	return p.repo.FindByEmail(ctx, normalizeEmail(email))
}

func (p *accountIdentityProvider) CreateUser(ctx context.Context, email, displayName, password string) (*model.Account, error) {
	logger := middleware.GetLogger(ctx)

	account := &model.Account{
		AccountID:   uuid.New(),
		Email:       normalizeEmail(email),
		DisplayName: displayName,
	}
	if password != "" {
		hash, err := hashPassword(password)
		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			return nil, err
		}
		account.PasswordHash = &hash
	}

	if err := p.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	logger.Info("Account created", "account_id", account.AccountID)
	return account, nil
}

func (p *accountIdentityProvider) MarkEmailVerified(ctx context.Context, email string) error {
	return p.repo.SetEmailVerified(ctx, normalizeEmail(email))
}

func (p *accountIdentityProvider) SetPassword(ctx context.Context, email, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return p.repo.UpdatePasswordHash(ctx, normalizeEmail(email), hash)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("hashPassword: %w", model.ErrInvalidInput)
		}
		return "", fmt.Errorf("hashPassword: %w", err)
	}
	return string(hash), nil
}
