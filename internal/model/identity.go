package model

import (
	"time"

	"github.com/google/uuid"
)

// Account はIDプロバイダが管理するユーザーレコードです
type Account struct {
	AccountID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email         string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName   string    `gorm:"type:varchar(100)"`
	PasswordHash  *string   `gorm:"default:null"`
	EmailVerified bool      `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Account) TableName() string {
	return "accounts"
}
