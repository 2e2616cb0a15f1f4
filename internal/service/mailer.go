//go:generate mockery --name Mailer --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"fmt"
	"log/slog"

	"verify_keep/internal/config"
	"verify_keep/internal/middleware"

	"gopkg.in/gomail.v2"
)

// Message は送信するメール1通分です。HTML は空でも構いません。
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// --- LogMailer ---
type LogMailer struct{}

func (m *LogMailer) Send(ctx context.Context, msg *Message) error {
	logger := middleware.GetLogger(ctx)
	logger.Info("--- Sending Email (LogMailer) ---",
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}

// --- SmtpMailer ---
type SmtpMailer struct {
	cfg    *config.SMTPConfig
	from   string
	dialer *gomail.Dialer
}

func NewSmtpMailer(cfg *config.Config) *SmtpMailer {
	return &SmtpMailer{
		cfg:    &cfg.SMTP,
		from:   cfg.Mailer.From,
		dialer: gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
	}
}

func (m *SmtpMailer) Send(ctx context.Context, msg *Message) error {
	logger := middleware.GetLogger(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	logger.Debug("Attempting to send email via SMTP",
		"smtp_addr", fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port),
		"from", m.from,
		"to", msg.To,
	)

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		gm.SetHeader("Reply-To", msg.ReplyTo)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	if err := m.dialer.DialAndSend(gm); err != nil {
		logger.Error("Failed to send email via SMTP", "error", err, "to", msg.To)
		return err
	}

	logger.Info("Email sent successfully via SMTP", "to", msg.To, "subject", msg.Subject)
	return nil
}

// --- NewMailer ファクトリ関数 ---
func NewMailer(cfg *config.Config) (Mailer, error) {
	logger := slog.Default()
	switch cfg.Mailer.Type {
	case "smtp":
		logger.Info("Initializing SMTP mailer...")
		return NewSmtpMailer(cfg), nil
	case "ses":
		logger.Info("Initializing SES mailer...")
		m, err := NewSESMailer(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "log":
		logger.Info("Initializing Log mailer...")
		return &LogMailer{}, nil
	default:
		logger.Warn("Unknown mailer type, defaulting to LogMailer", "type", cfg.Mailer.Type)
		return &LogMailer{}, nil
	}
}
