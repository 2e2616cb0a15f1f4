package webutil_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"verify_keep/internal/model"
	"verify_keep/internal/webutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	testCases := []struct {
		err      error
		expected int
	}{
		{model.ErrInvalidInput, http.StatusBadRequest},
		{model.ErrTokenMismatch, http.StatusBadRequest},
		{model.ErrNotFound, http.StatusNotFound},
		{model.ErrTokenExpired, http.StatusGone},
		{model.ErrTokenAlreadyUsed, http.StatusPreconditionFailed},
		{model.ErrConflict, http.StatusConflict},
		{model.ErrDeliveryFailed, http.StatusBadGateway},
		{model.ErrInternalServer, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", model.ErrNotFound), http.StatusNotFound},
		{model.NewAppError("TOKEN_EXPIRED", "expired", "", model.ErrTokenExpired), http.StatusGone},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.expected, webutil.MapErrorToStatusCode(tc.err))
		})
	}
}

func TestHandleError(t *testing.T) {
	t.Run("AppError はコードとフィールドを返す", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)

		webutil.HandleError(rr, req, model.NewAppError("INVALID_EMAIL", "A valid email address is required.", "email", model.ErrInvalidInput))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		var resp model.APIResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "INVALID_EMAIL", resp.Code)
		assert.Equal(t, "email", resp.Field)
	})

	t.Run("予期しないエラーの詳細は返さない", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)

		webutil.HandleError(rr, req, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "connection refused")
		var resp model.APIResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "INTERNAL_SERVER_ERROR", resp.Code)
	})
}

func TestRespondMethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	webutil.RespondMethodNotAllowed(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
	assert.Contains(t, rr.Body.String(), `"code":"METHOD_NOT_ALLOWED"`)
}
