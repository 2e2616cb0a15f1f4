//go:generate mockery --name TokenService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"verify_keep/internal/config"
	"verify_keep/internal/middleware"
	"verify_keep/internal/model"
	"verify_keep/internal/repository"
)

// bcrypt が扱えるパスワードの最大バイト数
const maxPasswordBytes = 72

// TokenService はメール検証コードとパスワードリセットトークンの発行・検証・消費を行います
type TokenService interface {
	SendVerificationEmail(ctx context.Context, email, name string) (*model.IssueResult, error)
	ResendVerificationCode(ctx context.Context, email string) (*model.IssueResult, error)
	VerifyEmailCode(ctx context.Context, email, code string) error
	SendPasswordResetEmail(ctx context.Context, email string) error
	VerifyResetToken(ctx context.Context, email, token string) error
	ResetPassword(ctx context.Context, email, token, newPassword string) error
	CheckEmailVerified(ctx context.Context, email string) (bool, error)
	CheckSubjectExists(ctx context.Context, email string) (bool, error)
}

type tokenService struct {
	tokenRepo repository.TokenRepository
	identity  IdentityProvider
	mailer    Mailer
	cfg       *config.Config

	now              func() time.Time
	newCode          func() (string, error)
	newResetToken    func() (string, error)
	minPasswordChars int
}

type TokenServiceOption func(*tokenService)

// WithClock は現在時刻の取得元を差し替えます
func WithClock(now func() time.Time) TokenServiceOption {
	return func(s *tokenService) { s.now = now }
}

// WithSecretGenerators はコード・リセットトークンの生成関数を差し替えます
func WithSecretGenerators(code, resetToken func() (string, error)) TokenServiceOption {
	return func(s *tokenService) {
		if code != nil {
			s.newCode = code
		}
		if resetToken != nil {
			s.newResetToken = resetToken
		}
	}
}

func NewTokenService(tokenRepo repository.TokenRepository, identity IdentityProvider, mailer Mailer, cfg *config.Config, opts ...TokenServiceOption) TokenService {
	s := &tokenService{
		tokenRepo:        tokenRepo,
		identity:         identity,
		mailer:           mailer,
		cfg:              cfg,
		now:              func() time.Time { return time.Now().UTC() },
		newCode:          generateCode,
		newResetToken:    generateResetToken,
		minPasswordChars: cfg.Token.PasswordMinLength,
	}
	if s.minPasswordChars < config.DefaultPasswordMinLength {
		s.minPasswordChars = config.DefaultPasswordMinLength
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendVerificationEmail は6桁の検証コードを発行し、メールで送信します
func (s *tokenService) SendVerificationEmail(ctx context.Context, email, name string) (*model.IssueResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewAppError("INVALID_INPUT", "Name is required.", "name", model.ErrInvalidInput)
	}
	return s.issueEmailVerification(ctx, email, name)
}

// ResendVerificationCode は表示名なしで検証コードを再発行します。前回のコードは無効になります。
func (s *tokenService) ResendVerificationCode(ctx context.Context, email string) (*model.IssueResult, error) {
	return s.issueEmailVerification(ctx, email, "")
}

func (s *tokenService) issueEmailVerification(ctx context.Context, email, name string) (*model.IssueResult, error) {
	logger := middleware.GetLogger(ctx)

	email, err := checkEmail(email)
	if err != nil {
		return nil, err
	}

	account, err := s.lookupAccount(ctx, email)
	if err != nil {
		return nil, err
	}
	if account.EmailVerified {
		logger.Info("Email already verified, skipping issuance", "account_id", account.AccountID)
		return &model.IssueResult{AlreadyVerified: true}, nil
	}
	if name == "" {
		name = account.DisplayName
	}

	code, err := s.newCode()
	if err != nil {
		logger.Error("Failed to generate verification code", "error", err)
		return nil, internalError(err)
	}

	now := s.now()
	ttl := s.cfg.Token.EmailCodeTTL
	token := &model.VerificationToken{
		Flow:       model.FlowEmailVerification,
		SubjectKey: email,
		Secret:     code,
		Name:       name,
		Verified:   false,
		Used:       false,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := s.tokenRepo.Upsert(ctx, token); err != nil {
		return nil, internalError(err)
	}

	text, html, err := renderEmail("verification", verificationEmailData{
		AppName:    s.cfg.App.Name,
		Name:       name,
		Code:       code,
		Link:       verificationLink(s.cfg.App.FrontendURL, code, email),
		TTLMinutes: int(ttl.Minutes()),
	})
	if err != nil {
		logger.Error("Failed to render verification email", "error", err)
		return nil, internalError(err)
	}

	// 送信に失敗してもトークンは残す (再送で上書きされる)
	if err := s.mailer.Send(ctx, &Message{
		To:      email,
		Subject: fmt.Sprintf("[%s] Your verification code", s.cfg.App.Name),
		Text:    text,
		HTML:    html,
	}); err != nil {
		logger.Error("Failed to send verification email", "error", err, "account_id", account.AccountID)
		return nil, deliveryError(err)
	}

	logger.Info("Verification code issued", "account_id", account.AccountID, "expires_at", token.ExpiresAt)
	return &model.IssueResult{AlreadyVerified: false}, nil
}

// VerifyEmailCode はコードを検証・消費し、アカウントをメール検証済みにします
func (s *tokenService) VerifyEmailCode(ctx context.Context, email, code string) error {
	logger := middleware.GetLogger(ctx)

	email, err := checkEmail(email)
	if err != nil {
		return err
	}
	if strings.TrimSpace(code) == "" {
		return model.NewAppError("INVALID_INPUT", "Verification code is required.", "verificationCode", model.ErrInvalidInput)
	}

	if err := s.consume(ctx, model.FlowEmailVerification, email, strings.TrimSpace(code)); err != nil {
		return err
	}

	// トークンを先に消費し、IDプロバイダの更新は最後に行う
	if err := s.identity.MarkEmailVerified(ctx, email); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return userNotFoundError()
		}
		logger.Error("Failed to mark email verified", "error", err)
		return internalError(err)
	}

	logger.Info("Email verified")
	return nil
}

// SendPasswordResetEmail はリセットトークンを発行し、リンクをメールで送信します
func (s *tokenService) SendPasswordResetEmail(ctx context.Context, email string) error {
	logger := middleware.GetLogger(ctx)

	email, err := checkEmail(email)
	if err != nil {
		return err
	}

	account, err := s.lookupAccount(ctx, email)
	if err != nil {
		return err
	}

	resetToken, err := s.newResetToken()
	if err != nil {
		logger.Error("Failed to generate reset token", "error", err)
		return internalError(err)
	}

	now := s.now()
	ttl := s.cfg.Token.ResetTokenTTL
	token := &model.VerificationToken{
		Flow:       model.FlowPasswordReset,
		SubjectKey: email,
		Secret:     resetToken,
		Used:       false,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := s.tokenRepo.Upsert(ctx, token); err != nil {
		return internalError(err)
	}

	text, html, err := renderEmail("password_reset", passwordResetEmailData{
		AppName:    s.cfg.App.Name,
		Link:       passwordResetLink(s.cfg.App.FrontendURL, resetToken, email),
		TTLMinutes: int(ttl.Minutes()),
	})
	if err != nil {
		logger.Error("Failed to render password reset email", "error", err)
		return internalError(err)
	}

	if err := s.mailer.Send(ctx, &Message{
		To:      email,
		Subject: fmt.Sprintf("[%s] Reset your password", s.cfg.App.Name),
		Text:    text,
		HTML:    html,
	}); err != nil {
		logger.Error("Failed to send password reset email", "error", err, "account_id", account.AccountID)
		return deliveryError(err)
	}

	logger.Info("Password reset token issued", "account_id", account.AccountID, "expires_at", token.ExpiresAt)
	return nil
}

// VerifyResetToken はリセットトークンを検証のみ行います (消費しない)
func (s *tokenService) VerifyResetToken(ctx context.Context, email, token string) error {
	email, err := checkEmail(email)
	if err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return model.NewAppError("INVALID_INPUT", "Token is required.", "token", model.ErrInvalidInput)
	}
	_, err = s.checkToken(ctx, model.FlowPasswordReset, email, strings.TrimSpace(token))
	return err
}

// ResetPassword はトークンを再検証・消費してからパスワードを更新します
func (s *tokenService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	logger := middleware.GetLogger(ctx)

	// パスワードの検証はトークンの参照より前に行う
	if utf8.RuneCountInString(newPassword) < s.minPasswordChars {
		return model.NewAppError("INVALID_PASSWORD",
			fmt.Sprintf("Password must be at least %d characters.", s.minPasswordChars),
			"newPassword", model.ErrInvalidInput)
	}
	if len(newPassword) > maxPasswordBytes {
		return model.NewAppError("INVALID_PASSWORD",
			fmt.Sprintf("Password must be at most %d bytes.", maxPasswordBytes),
			"newPassword", model.ErrInvalidInput)
	}

	email, err := checkEmail(email)
	if err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return model.NewAppError("INVALID_INPUT", "Token is required.", "token", model.ErrInvalidInput)
	}

	if err := s.consume(ctx, model.FlowPasswordReset, email, strings.TrimSpace(token)); err != nil {
		return err
	}

	if err := s.identity.SetPassword(ctx, email, newPassword); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return userNotFoundError()
		}
		logger.Error("Failed to set new password", "error", err)
		return internalError(err)
	}

	logger.Info("Password reset completed")
	return nil
}

func (s *tokenService) CheckEmailVerified(ctx context.Context, email string) (bool, error) {
	email, err := checkEmail(email)
	if err != nil {
		return false, err
	}
	account, err := s.lookupAccount(ctx, email)
	if err != nil {
		return false, err
	}
	return account.EmailVerified, nil
}

// CheckSubjectExists は不正な入力や未登録の場合もエラーにせず false を返します
func (s *tokenService) CheckSubjectExists(ctx context.Context, email string) (bool, error) {
	logger := middleware.GetLogger(ctx)

	email = normalizeEmail(email)
	if !isValidEmail(email) {
		return false, nil
	}
	_, err := s.identity.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		logger.Error("Failed to look up account", "error", err)
		return false, internalError(err)
	}
	return true, nil
}

// checkToken は not found -> used -> expired -> mismatch の順に判定します
func (s *tokenService) checkToken(ctx context.Context, flow model.TokenFlow, subjectKey, presented string) (*model.VerificationToken, error) {
	token, err := s.tokenRepo.Find(ctx, flow, subjectKey)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("TOKEN_NOT_FOUND", "No pending token was found for this email.", "", model.ErrNotFound)
		}
		return nil, internalError(err)
	}
	if err := classifyToken(token, presented, s.now()); err != nil {
		return token, err
	}
	return token, nil
}

func classifyToken(token *model.VerificationToken, presented string, now time.Time) error {
	if token.Used {
		return model.NewAppError("TOKEN_ALREADY_USED", "This token has already been used.", "", model.ErrTokenAlreadyUsed)
	}
	if token.IsExpired(now) {
		return model.NewAppError("TOKEN_EXPIRED", "This token has expired. Please request a new one.", "", model.ErrTokenExpired)
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(token.Secret)) != 1 {
		return model.NewAppError("TOKEN_MISMATCH", "The token is invalid.", "", model.ErrTokenMismatch)
	}
	return nil
}

// consume は検証後、used=false の場合のみ条件付き更新で used=true にします。
// 更新対象が無かった場合は再読込して判定し直します。
func (s *tokenService) consume(ctx context.Context, flow model.TokenFlow, subjectKey, presented string) error {
	logger := middleware.GetLogger(ctx)

	if _, err := s.checkToken(ctx, flow, subjectKey, presented); err != nil {
		return err
	}

	err := s.tokenRepo.MarkUsed(ctx, flow, subjectKey, presented, s.now())
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrTokenStale) {
		return internalError(err)
	}

	logger.Warn("Token changed between check and consume, re-validating", "flow", flow)
	if _, err := s.checkToken(ctx, flow, subjectKey, presented); err != nil {
		return err
	}
	// 再読込でも有効に見える場合は他の消費者が先行したとみなす
	return model.NewAppError("TOKEN_ALREADY_USED", "This token has already been used.", "", model.ErrTokenAlreadyUsed)
}

func (s *tokenService) lookupAccount(ctx context.Context, email string) (*model.Account, error) {
	account, err := s.identity.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, userNotFoundError()
		}
		middleware.GetLogger(ctx).Error("Failed to look up account", "error", err)
		return nil, internalError(err)
	}
	return account, nil
}

func checkEmail(email string) (string, error) {
	email = normalizeEmail(email)
	if !isValidEmail(email) {
		return "", model.NewAppError("INVALID_EMAIL", "A valid email address is required.", "email", model.ErrInvalidInput)
	}
	return email, nil
}

func userNotFoundError() *model.AppError {
	return model.NewAppError("USER_NOT_FOUND", "No account was found for this email.", "email", model.ErrNotFound)
}

func internalError(err error) *model.AppError {
	return model.NewAppError("INTERNAL_SERVER_ERROR", "Internal server error.", "", fmt.Errorf("%w: %v", model.ErrInternalServer, err))
}

func deliveryError(err error) *model.AppError {
	return model.NewAppError("EMAIL_SEND_FAILED", "Failed to send email. Please try again.", "", fmt.Errorf("%w: %v", model.ErrDeliveryFailed, err))
}
