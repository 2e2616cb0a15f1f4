//go:generate mockery --name TokenRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"verify_keep/internal/middleware"
	"verify_keep/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TokenRepository interface {
	// Upsert は (flow, subject_key) のトークンを作成、または上書きします
	Upsert(ctx context.Context, token *model.VerificationToken) error
	Find(ctx context.Context, flow model.TokenFlow, subjectKey string) (*model.VerificationToken, error)
	// MarkUsed は未使用・有効期限内・secret一致の場合のみ used=true にします。
	// 該当行が無ければ model.ErrTokenStale を返します。
	MarkUsed(ctx context.Context, flow model.TokenFlow, subjectKey, secret string, now time.Time) error
}

type gormTokenRepository struct {
	db *gorm.DB
}

func NewGormTokenRepository(db *gorm.DB) TokenRepository {
	return &gormTokenRepository{db: db}
}

// 再発行時に上書きする列
var tokenUpsertColumns = []string{"secret", "name", "verified", "used", "used_at", "created_at", "expires_at"}

func (r *gormTokenRepository) Upsert(ctx context.Context, token *model.VerificationToken) error {
	logger := middleware.GetLogger(ctx)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "flow"}, {Name: "subject_key"}},
			DoUpdates: clause.AssignmentColumns(tokenUpsertColumns),
		}).
		Create(token).Error
	if err != nil {
		logger.Error("Failed to upsert verification token", "error", err, "flow", token.Flow)
		return fmt.Errorf("gormTokenRepository.Upsert: %w", err)
	}
	return nil
}

func (r *gormTokenRepository) Find(ctx context.Context, flow model.TokenFlow, subjectKey string) (*model.VerificationToken, error) {
	logger := middleware.GetLogger(ctx)
	var token model.VerificationToken
	err := r.db.WithContext(ctx).
		Where("flow = ? AND subject_key = ?", flow, subjectKey).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Failed to find verification token", "error", err, "flow", flow)
		return nil, fmt.Errorf("gormTokenRepository.Find: %w", err)
	}
	return &token, nil
}

func (r *gormTokenRepository) MarkUsed(ctx context.Context, flow model.TokenFlow, subjectKey, secret string, now time.Time) error {
	logger := middleware.GetLogger(ctx)
	updates := map[string]interface{}{
		"used":    true,
		"used_at": now,
	}
	// verified は確認コード用の旧フラグ
	if flow == model.FlowEmailVerification {
		updates["verified"] = true
	}
	result := r.db.WithContext(ctx).
		Model(&model.VerificationToken{}).
		Where("flow = ? AND subject_key = ? AND secret = ? AND used = ? AND expires_at >= ?",
			flow, subjectKey, secret, false, now).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to mark verification token used", "error", result.Error, "flow", flow)
		return fmt.Errorf("gormTokenRepository.MarkUsed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrTokenStale
	}
	return nil
}
