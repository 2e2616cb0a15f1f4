// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "verify_keep"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort     = ":8080"
	DefaultHandlerTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
	DefaultDatabaseDriver = "postgres"
	DefaultFrontendURL    = "http://localhost:3000"
)

// トークン関連のデフォルト値
const (
	DefaultEmailCodeTTL      = 10 * time.Minute
	DefaultResetTokenTTL     = 60 * time.Minute
	DefaultPasswordMinLength = 6
)

const (
	DefaultRateLimitTokens   = 5
	DefaultRateLimitInterval = time.Minute
)
