// internal/config/config.go
package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	App       AppConfig       `mapstructure:"app"`
	Token     TokenConfig     `mapstructure:"token"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Mailer    MailerConfig    `mapstructure:"mailer"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	SES       SESConfig       `mapstructure:"ses"`
	Contact   ContactConfig   `mapstructure:"contact"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "postgres" または "sqlite"
	URL    string `mapstructure:"url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	FrontendURL string `mapstructure:"frontend_url"` // メール内のディープリンクの基底URL
}

// TokenConfig は検証コード・リセットトークンの有効期限などを保持します
type TokenConfig struct {
	EmailCodeTTL      time.Duration `mapstructure:"email_code_ttl"`
	ResetTokenTTL     time.Duration `mapstructure:"reset_token_ttl"`
	PasswordMinLength int           `mapstructure:"password_min_length"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Tokens      uint64        `mapstructure:"tokens"`
	Interval    time.Duration `mapstructure:"interval"`
	BehindProxy bool          `mapstructure:"behind_proxy"`
}

type MailerConfig struct {
	Type string `mapstructure:"type"` // "log", "smtp", "ses"
	From string `mapstructure:"from"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type SESConfig struct {
	Region          string `mapstructure:"region"`
	AuthType        string `mapstructure:"auth_type"` // "static_credentials" または "iam_role"
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// ContactConfig はお問い合わせ・応募メールの転送先です
type ContactConfig struct {
	Inbox        string `mapstructure:"inbox"`
	CareersInbox string `mapstructure:"careers_inbox"`
}

// LoadConfig は path 配下の config.yaml と APP_ 接頭辞の環境変数から設定を読み込みます
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	// 例: APP_DATABASE_URL -> database.url
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return nil, err
	}

	if cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}
	if cfg.Token.PasswordMinLength < DefaultPasswordMinLength {
		// 最低長を下回る設定は受け付けない
		log.Printf("Password minimum length %d is below the minimum, using %d", cfg.Token.PasswordMinLength, DefaultPasswordMinLength)
		cfg.Token.PasswordMinLength = DefaultPasswordMinLength
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", cfg.Server.Port)
	log.Printf("Database Driver: %s", cfg.Database.Driver)
	log.Printf("Mailer Type: %s", cfg.Mailer.Type)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.handler_timeout", DefaultHandlerTimeout)
	v.SetDefault("database.driver", DefaultDatabaseDriver)
	v.SetDefault("database.url", "")
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("app.name", AppName)
	v.SetDefault("app.frontend_url", DefaultFrontendURL)
	v.SetDefault("token.email_code_ttl", DefaultEmailCodeTTL)
	v.SetDefault("token.reset_token_ttl", DefaultResetTokenTTL)
	v.SetDefault("token.password_min_length", DefaultPasswordMinLength)
	v.SetDefault("cors.allowed_origins", []string{DefaultFrontendURL})
	v.SetDefault("cors.allowed_methods", []string{"POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization"})
	v.SetDefault("cors.exposed_headers", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.tokens", DefaultRateLimitTokens)
	v.SetDefault("rate_limit.interval", DefaultRateLimitInterval)
	v.SetDefault("rate_limit.behind_proxy", false)
	v.SetDefault("mailer.type", "log")
	v.SetDefault("mailer.from", "no-reply@example.com")
	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 25)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("ses.region", "")
	v.SetDefault("ses.auth_type", "iam_role")
	v.SetDefault("ses.access_key_id", "")
	v.SetDefault("ses.secret_access_key", "")
	v.SetDefault("contact.inbox", "")
	v.SetDefault("contact.careers_inbox", "")
}
