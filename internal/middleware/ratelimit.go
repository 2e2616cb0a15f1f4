package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"verify_keep/internal/config"
	"verify_keep/internal/model"

	"github.com/sethvargo/go-limiter"
	"github.com/sethvargo/go-limiter/httplimit"
	"github.com/sethvargo/go-limiter/memorystore"
)

// RateLimiter はクライアントIP単位でリクエスト数を制限します
type RateLimiter struct {
	store   limiter.Store
	keyFunc httplimit.KeyFunc
}

func NewRateLimiter(cfg config.RateLimitConfig) (*RateLimiter, error) {
	store, err := memorystore.New(&memorystore.Config{
		Tokens:   cfg.Tokens,
		Interval: cfg.Interval,
	})
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		store:   store,
		keyFunc: clientIPKeyFunc(cfg.BehindProxy),
	}, nil
}

// clientIPKeyFunc はクライアントIPをキーにします。
// X-Forwarded-For はプロキシ配下の場合のみ参照し、右端 (直前のプロキシが付与した値) を使う。
// 左側の値はクライアントが自由に書けるためキーにしない。
func clientIPKeyFunc(behindProxy bool) httplimit.KeyFunc {
	return func(r *http.Request) (string, error) {
		if behindProxy {
			if values := r.Header.Values("X-Forwarded-For"); len(values) > 0 {
				hops := strings.Split(values[len(values)-1], ",")
				if ip := net.ParseIP(strings.TrimSpace(hops[len(hops)-1])); ip != nil {
					return ip.String(), nil
				}
			}
		}

		host := r.RemoteAddr
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		ip := net.ParseIP(host)
		if ip == nil {
			return "", fmt.Errorf("invalid remote address %q", r.RemoteAddr)
		}
		return ip.String(), nil
	}
}

// Handle は上限を超えたリクエストに 429 をJSONで返します
func (l *RateLimiter) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := GetLogger(ctx)

		key, err := l.keyFunc(r)
		if err != nil {
			logger.Error("Failed to build rate limit key", "error", err)
			writeJSON(w, http.StatusInternalServerError, model.APIResponse{
				Success: false,
				Message: "Internal server error.",
				Code:    "INTERNAL_SERVER_ERROR",
			})
			return
		}

		limit, remaining, reset, ok, err := l.store.Take(ctx, key)
		if err != nil {
			logger.Error("Failed to take rate limit token", "error", err)
			writeJSON(w, http.StatusInternalServerError, model.APIResponse{
				Success: false,
				Message: "Internal server error.",
				Code:    "INTERNAL_SERVER_ERROR",
			})
			return
		}

		resetTime := time.Unix(0, int64(reset)).UTC()
		w.Header().Set(httplimit.HeaderRateLimitLimit, strconv.FormatUint(limit, 10))
		w.Header().Set(httplimit.HeaderRateLimitRemaining, strconv.FormatUint(remaining, 10))
		w.Header().Set(httplimit.HeaderRateLimitReset, resetTime.Format(time.RFC1123))

		if !ok {
			logger.Warn("Rate limit exceeded", "path", r.URL.Path)
			w.Header().Set(httplimit.HeaderRetryAfter, resetTime.Format(time.RFC1123))
			writeJSON(w, http.StatusTooManyRequests, model.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Code:    "RATE_LIMITED",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Close はストアのバックグラウンド処理を停止します
func (l *RateLimiter) Close(ctx context.Context) error {
	return l.store.Close(ctx)
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
