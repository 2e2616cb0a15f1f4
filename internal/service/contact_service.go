//go:generate mockery --name ContactService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"verify_keep/internal/config"
	"verify_keep/internal/middleware"
	"verify_keep/internal/model"
)

// ContactService は訪問者からのお問い合わせ・応募を設定された受信箱へ転送します
type ContactService interface {
	SendContactMessage(ctx context.Context, req *model.ContactRequest) error
	SendJobApplication(ctx context.Context, req *model.JobApplicationRequest) error
}

type contactService struct {
	mailer Mailer
	cfg    *config.Config
}

func NewContactService(mailer Mailer, cfg *config.Config) ContactService {
	return &contactService{mailer: mailer, cfg: cfg}
}

func (s *contactService) SendContactMessage(ctx context.Context, req *model.ContactRequest) error {
	logger := middleware.GetLogger(ctx)

	inbox := s.cfg.Contact.Inbox
	if inbox == "" {
		logger.Error("Contact inbox is not configured")
		return model.NewAppError("CONTACT_NOT_CONFIGURED", "Contact form is not available.", "", model.ErrInternalServer)
	}

	subject := sanitizeHeader(req.Subject)
	if subject == "" {
		subject = "Contact form message"
	}

	var buf bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&buf, "contact.txt.tmpl", req); err != nil {
		logger.Error("Failed to render contact email", "error", err)
		return internalError(err)
	}

	if err := s.mailer.Send(ctx, &Message{
		To:      inbox,
		ReplyTo: normalizeEmail(req.Email),
		Subject: fmt.Sprintf("[%s] %s", s.cfg.App.Name, subject),
		Text:    buf.String(),
	}); err != nil {
		logger.Error("Failed to relay contact message", "error", err)
		return deliveryError(err)
	}

	logger.Info("Contact message relayed")
	return nil
}

func (s *contactService) SendJobApplication(ctx context.Context, req *model.JobApplicationRequest) error {
	logger := middleware.GetLogger(ctx)

	inbox := s.cfg.Contact.CareersInbox
	if inbox == "" {
		inbox = s.cfg.Contact.Inbox
	}
	if inbox == "" {
		logger.Error("Careers inbox is not configured")
		return model.NewAppError("CONTACT_NOT_CONFIGURED", "Job applications are not available.", "", model.ErrInternalServer)
	}

	var buf bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&buf, "job_application.txt.tmpl", req); err != nil {
		logger.Error("Failed to render job application email", "error", err)
		return internalError(err)
	}

	if err := s.mailer.Send(ctx, &Message{
		To:      inbox,
		ReplyTo: normalizeEmail(req.Email),
		Subject: fmt.Sprintf("[%s] Job application: %s - %s", s.cfg.App.Name, sanitizeHeader(req.Position), sanitizeHeader(req.Name)),
		Text:    buf.String(),
	}); err != nil {
		logger.Error("Failed to relay job application", "error", err)
		return deliveryError(err)
	}

	logger.Info("Job application relayed", "position", req.Position)
	return nil
}

// sanitizeHeader はヘッダーに入れる値から改行を取り除きます
func sanitizeHeader(v string) string {
	v = strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
	return strings.TrimSpace(v)
}
