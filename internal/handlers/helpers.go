package handlers

import (
	"net/http"

	"verify_keep/internal/middleware"
	"verify_keep/internal/webutil"
)

// decodeAndValidate はボディのデコードと検証を行い、失敗時はエラーレスポンスを書き込んで false を返します
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	logger := middleware.GetLogger(r.Context())

	if err := webutil.DecodeJSONBody(r, dst); err != nil {
		logger.Warn("Failed to decode request body", "error", err)
		webutil.HandleError(w, r, err)
		return false
	}
	if err := webutil.ValidateStruct(dst); err != nil {
		logger.Warn("Request validation failed", "error", err)
		webutil.HandleError(w, r, err)
		return false
	}
	return true
}

// handleServiceError はステータスに応じたレベルでログを出してからエラーレスポンスを返します
func handleServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger := middleware.GetLogger(r.Context())
	if webutil.MapErrorToStatusCode(err) >= http.StatusInternalServerError {
		logger.Error(msg, "error", err)
	} else {
		logger.Warn(msg, "error", err)
	}
	webutil.HandleError(w, r, err)
}
