// helpers_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// httpRequestDetails はHTTPリクエストの送信に必要な情報をまとめます。
type httpRequestDetails struct {
	Method  string
	Path    string
	Body    interface{}
	Headers map[string]string
}

// httpResponseExpectations はHTTPレスポンスの検証に必要な期待値をまとめます。
type httpResponseExpectations struct {
	ExpectedCode      int
	ExpectedErrorCode string
}

// apiResponse は全エンドポイントのレスポンスを受けるための構造体です。
type apiResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Code            string `json:"code"`
	Field           string `json:"field"`
	AlreadyVerified bool   `json:"alreadyVerified"`
	EmailVerified   bool   `json:"emailVerified"`
	Exists          bool   `json:"exists"`
}

// sendRequest はHTTPリクエストを送信し、ステータスとエラーコードを検証してレスポンスを返します。
func sendRequest(t *testing.T, server *httptest.Server, details httpRequestDetails, expectations httpResponseExpectations) (*http.Response, apiResponse) {
	t.Helper()

	var reqBodyReader io.Reader
	if details.Body != nil {
		if strPayload, ok := details.Body.(string); ok {
			reqBodyReader = strings.NewReader(strPayload)
		} else {
			reqBodyBytes, err := json.Marshal(details.Body)
			require.NoError(t, err, "Failed to marshal request body")
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
		}
	}

	req, err := http.NewRequest(details.Method, server.URL+details.Path, reqBodyReader)
	require.NoError(t, err, "Failed to create request")

	if reqBodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range details.Headers {
		req.Header.Set(key, value)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err, "Failed to execute request")
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")

	assert.Equal(t, expectations.ExpectedCode, resp.StatusCode, "Status code mismatch, body: %s", string(respBodyBytes))

	var body apiResponse
	if len(respBodyBytes) > 0 {
		require.NoError(t, json.Unmarshal(respBodyBytes, &body), "Response is not JSON: %s", string(respBodyBytes))
	}
	if expectations.ExpectedErrorCode != "" {
		assert.False(t, body.Success)
		assert.Equal(t, expectations.ExpectedErrorCode, body.Code)
	}
	return resp, body
}

// post は JSON ボディ付きの POST を送る sendRequest の短縮形です。
func post(t *testing.T, server *httptest.Server, path string, body interface{}, expectedCode int, expectedErrorCode string) apiResponse {
	t.Helper()
	_, resp := sendRequest(t, server,
		httpRequestDetails{Method: http.MethodPost, Path: path, Body: body},
		httpResponseExpectations{ExpectedCode: expectedCode, ExpectedErrorCode: expectedErrorCode},
	)
	return resp
}

// clearTable は指定されたモデルのテーブルデータをクリアします。
func clearTable(t *testing.T, db *gorm.DB, modelInstance interface{}) {
	t.Helper()
	err := db.Unscoped().Where("1 = 1").Delete(modelInstance).Error
	require.NoError(t, err, fmt.Sprintf("Failed to clear table for model %T", modelInstance))
}
