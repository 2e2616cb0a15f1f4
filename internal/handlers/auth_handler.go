package handlers

import (
	"net/http"

	"verify_keep/internal/middleware"
	"verify_keep/internal/model"
	"verify_keep/internal/service"
	"verify_keep/internal/webutil"
)

type AuthHandler struct {
	service service.TokenService
}

func NewAuthHandler(s service.TokenService) *AuthHandler {
	return &AuthHandler{service: s}
}

// SendVerification は検証コードを発行してメールで送信します
func (h *AuthHandler) SendVerification(w http.ResponseWriter, r *http.Request) {
	var req model.SendVerificationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.SendVerificationEmail(r.Context(), req.Email, req.Name)
	if err != nil {
		handleServiceError(w, r, "Sending verification email failed in service", err)
		return
	}
	respondIssued(w, r, result, "Verification email sent. Please check your inbox.")
}

// ResendVerification は検証コードを再発行します。前回のコードは無効になります。
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req model.ResendVerificationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.ResendVerificationCode(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, r, "Resending verification code failed in service", err)
		return
	}
	respondIssued(w, r, result, "A new verification code has been sent.")
}

// VerifyEmail はコードを検証し、メールアドレスを検証済みにします
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.VerifyEmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.VerifyEmailCode(r.Context(), req.Email, req.VerificationCode); err != nil {
		handleServiceError(w, r, "Email verification failed in service", err)
		return
	}

	logger.Info("Email verification successful")
	webutil.RespondWithJSON(w, r, http.StatusOK, model.APIResponse{
		Success: true,
		Message: "Email verified successfully.",
	})
}

// SendPasswordReset はパスワードリセットのリンクをメールで送信します
func (h *AuthHandler) SendPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordResetSendRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.SendPasswordResetEmail(r.Context(), req.Email); err != nil {
		handleServiceError(w, r, "Sending password reset email failed in service", err)
		return
	}

	webutil.RespondWithJSON(w, r, http.StatusOK, model.APIResponse{
		Success: true,
		Message: "Password reset email sent. Please check your inbox.",
	})
}

// VerifyResetToken はリセットトークンが有効かどうかだけを確認します
func (h *AuthHandler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyResetTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.VerifyResetToken(r.Context(), req.Email, req.Token); err != nil {
		handleServiceError(w, r, "Reset token verification failed in service", err)
		return
	}

	webutil.RespondWithJSON(w, r, http.StatusOK, model.APIResponse{
		Success: true,
		Message: "Token is valid.",
	})
}

// ResetPassword はトークンを消費して新しいパスワードを設定します
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		handleServiceError(w, r, "Password reset failed in service", err)
		return
	}

	logger.Info("Password reset successful")
	webutil.RespondWithJSON(w, r, http.StatusOK, model.APIResponse{
		Success: true,
		Message: "Password has been reset successfully.",
	})
}

// CheckEmailVerified はアカウントのメール検証状態を返します
func (h *AuthHandler) CheckEmailVerified(w http.ResponseWriter, r *http.Request) {
	var req model.EmailOnlyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	verified, err := h.service.CheckEmailVerified(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, r, "Checking email verification failed in service", err)
		return
	}

	webutil.RespondWithJSON(w, r, http.StatusOK, model.EmailVerifiedResponse{
		APIResponse:   model.APIResponse{Success: true, Message: "OK"},
		EmailVerified: verified,
	})
}

// CheckSubjectExists は不正な入力でも 200 と exists=false を返します
func (h *AuthHandler) CheckSubjectExists(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.EmailOnlyRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Debug("Unreadable body for existence check, reporting not found", "error", err)
		req.Email = ""
	}

	exists, err := h.service.CheckSubjectExists(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, r, "Checking account existence failed in service", err)
		return
	}

	webutil.RespondWithJSON(w, r, http.StatusOK, model.SubjectExistsResponse{
		APIResponse: model.APIResponse{Success: true, Message: "OK"},
		Exists:      exists,
	})
}

func respondIssued(w http.ResponseWriter, r *http.Request, result *model.IssueResult, sentMessage string) {
	resp := model.IssueResponse{
		APIResponse: model.APIResponse{Success: true, Message: sentMessage},
	}
	if result != nil && result.AlreadyVerified {
		resp.Message = "Email is already verified."
		resp.AlreadyVerified = true
	}
	webutil.RespondWithJSON(w, r, http.StatusOK, resp)
}
