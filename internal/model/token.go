package model

import (
	"time"
)

// TokenFlow はトークンの用途です
type TokenFlow string

const (
	FlowEmailVerification TokenFlow = "email_verification"
	FlowPasswordReset     TokenFlow = "password_reset"
)

// VerificationToken はメール検証コード・パスワードリセットトークンを保持します。
// (flow, subject_key) ごとに1件のみ存在し、再発行で上書きされます。
type VerificationToken struct {
	Flow       TokenFlow `gorm:"type:varchar(32);primaryKey"`
	SubjectKey string    `gorm:"type:varchar(255);primaryKey"`
	Secret     string    `gorm:"not null"`
	Name       string    `gorm:"type:varchar(100)"`
	Verified   bool      `gorm:"not null"` // 旧互換のフラグ。判定には使わない
	Used       bool      `gorm:"not null"`
	UsedAt     *time.Time
	CreatedAt  time.Time `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

func (VerificationToken) TableName() string {
	return "verification_tokens"
}

// IsExpired は now 時点で有効期限を過ぎているかを返します
func (t *VerificationToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
