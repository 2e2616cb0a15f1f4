package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"verify_keep/internal/config"
	"verify_keep/internal/handlers"
	"verify_keep/internal/middleware"
	servicemocks "verify_keep/internal/service/mocks"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newRateLimitedServer はレート制限付きのルーターでテストサーバーを起動します
func newRateLimitedServer(t *testing.T, tokenService *servicemocks.TokenService, cfg config.RateLimitConfig) *httptest.Server {
	t.Helper()
	limiter, err := middleware.NewRateLimiter(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { limiter.Close(context.Background()) })

	router := handlers.NewRouter(handlers.RouterOptions{
		Logger:      testLogger,
		RateLimiter: limiter,
	}, handlers.NewAuthHandler(tokenService), handlers.NewContactHandler(servicemocks.NewContactService(t)))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestRouter_RateLimitWithProxyHeaders(t *testing.T) {
	body := map[string]string{"email": "ada@example.com"}

	t.Run("プロキシ配下でなければヘッダーを無視して接続元で制限する", func(t *testing.T) {
		tokenService := servicemocks.NewTokenService(t)
		tokenService.On("SendPasswordResetEmail", mock.Anything, "ada@example.com").Return(nil).Once()
		server := newRateLimitedServer(t, tokenService, config.RateLimitConfig{Enabled: true, Tokens: 1, Interval: time.Minute})

		sendRequest(t, server, httpRequestDetails{
			Method:  http.MethodPost,
			Path:    "/api/v1/password-reset/send",
			Body:    body,
			Headers: map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"},
		}, httpResponseExpectations{ExpectedCode: http.StatusOK})

		for _, headers := range []map[string]string{
			{"X-Forwarded-For": "203.0.113.2, 10.0.0.1"},
			{"X-Real-IP": "203.0.113.3"},
			{"True-Client-IP": "203.0.113.4"},
		} {
			sendRequest(t, server, httpRequestDetails{
				Method:  http.MethodPost,
				Path:    "/api/v1/password-reset/send",
				Body:    body,
				Headers: headers,
			}, httpResponseExpectations{ExpectedCode: http.StatusTooManyRequests, ExpectedErrorCode: "RATE_LIMITED"})
		}
	})

	t.Run("プロキシ配下では右端のホップで制限する", func(t *testing.T) {
		tokenService := servicemocks.NewTokenService(t)
		tokenService.On("SendPasswordResetEmail", mock.Anything, "ada@example.com").Return(nil).Twice()
		server := newRateLimitedServer(t, tokenService, config.RateLimitConfig{Enabled: true, Tokens: 1, Interval: time.Minute, BehindProxy: true})

		send := func(forwarded string, code int, errCode string) {
			sendRequest(t, server, httpRequestDetails{
				Method:  http.MethodPost,
				Path:    "/api/v1/password-reset/send",
				Body:    body,
				Headers: map[string]string{"X-Forwarded-For": forwarded},
			}, httpResponseExpectations{ExpectedCode: code, ExpectedErrorCode: errCode})
		}

		send("203.0.113.1, 198.51.100.7", http.StatusOK, "")
		send("203.0.113.99, 198.51.100.7", http.StatusTooManyRequests, "RATE_LIMITED")
		send("198.51.100.8", http.StatusOK, "")
	})
}
