package model

// SendVerificationRequest は検証メール送信APIのリクエストボディ
type SendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=100"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyEmailRequest struct {
	Email            string `json:"email" validate:"required,email"`
	VerificationCode string `json:"verificationCode" validate:"required"`
}

type PasswordResetSendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResetTokenRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

// ResetPasswordRequest の最小長はサービス側でも再検証する
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// EmailOnlyRequest はアカウント照会系APIのリクエストボディ
type EmailOnlyRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// APIResponse は全エンドポイント共通のレスポンス形式
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

type IssueResponse struct {
	APIResponse
	AlreadyVerified bool `json:"alreadyVerified"`
}

type EmailVerifiedResponse struct {
	APIResponse
	EmailVerified bool `json:"emailVerified"`
}

type SubjectExistsResponse struct {
	APIResponse
	Exists bool `json:"exists"`
}

// IssueResult は発行系操作の結果
type IssueResult struct {
	AlreadyVerified bool
}
