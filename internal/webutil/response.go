// internal/webutil/response.go
package webutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"verify_keep/internal/middleware"
	"verify_keep/internal/model"

	"github.com/go-playground/validator/v10"
)

// HandleError はエラーを解釈し、適切なJSONエラーレスポンスを返します。
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	logger := middleware.GetLogger(r.Context())
	statusCode := MapErrorToStatusCode(err)

	resp := model.APIResponse{Success: false}

	var appErr *model.AppError
	if errors.As(err, &appErr) {
		resp.Message = appErr.Detail.Message
		resp.Code = appErr.Detail.Code
		resp.Field = appErr.Detail.Field
		if statusCode >= http.StatusInternalServerError {
			logger.Error("Request failed", "error", err, "status", statusCode)
		}
	} else {
		// 予期せぬエラーの詳細はログのみに出力
		logger.Error("Unhandled error", "error", err, "status", statusCode)
		detail := defaultErrorDetail(statusCode)
		resp.Message = detail.Message
		resp.Code = detail.Code
	}

	RespondWithJSON(w, r, statusCode, resp)
}

// MapErrorToStatusCode はアプリケーションエラーをHTTPステータスコードにマッピングします
func MapErrorToStatusCode(err error) int {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		err = appErr.Unwrap()
	}

	switch {
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrTokenMismatch):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrTokenExpired):
		return http.StatusGone
	case errors.Is(err, model.ErrTokenAlreadyUsed):
		return http.StatusPreconditionFailed
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrDeliveryFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func defaultErrorDetail(statusCode int) model.ErrorDetail {
	switch statusCode {
	case http.StatusBadRequest:
		return model.ErrorDetail{Code: "INVALID_INPUT", Message: "Invalid input."}
	case http.StatusNotFound:
		return model.ErrorDetail{Code: "NOT_FOUND", Message: "Resource not found."}
	case http.StatusGone:
		return model.ErrorDetail{Code: "TOKEN_EXPIRED", Message: "The token has expired."}
	case http.StatusPreconditionFailed:
		return model.ErrorDetail{Code: "TOKEN_ALREADY_USED", Message: "The token has already been used."}
	case http.StatusConflict:
		return model.ErrorDetail{Code: "CONFLICT", Message: "Resource conflict."}
	case http.StatusBadGateway:
		return model.ErrorDetail{Code: "EMAIL_SEND_FAILED", Message: "Failed to send email."}
	default:
		return model.ErrorDetail{Code: "INTERNAL_SERVER_ERROR", Message: "Internal server error."}
	}
}

// RespondWithJSON はJSONレスポンスを返します
func RespondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		middleware.GetLogger(r.Context()).Error("Error marshaling JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"message":"Failed to build response.","code":"INTERNAL_SERVER_ERROR"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondMethodNotAllowed はPOST以外のメソッドに対する 405 を返します
func RespondMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	RespondWithJSON(w, r, http.StatusMethodNotAllowed, model.APIResponse{
		Success: false,
		Message: "Method not allowed.",
		Code:    "METHOD_NOT_ALLOWED",
	})
}

// NewValidationErrorResponse はバリデーションエラーを翻訳済みメッセージの AppError に変換します
func NewValidationErrorResponse(errs validator.ValidationErrors) *model.AppError {
	var fields []string
	var messages []string

	for _, err := range errs {
		fields = append(fields, err.Field())
		messages = append(messages, err.Translate(Trans))
	}

	return model.NewAppError(
		"VALIDATION_ERROR",
		strings.Join(messages, " "),
		strings.Join(fields, ","),
		model.ErrInvalidInput,
	)
}
