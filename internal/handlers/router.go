package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"verify_keep/internal/config"
	"verify_keep/internal/middleware"
	"verify_keep/internal/model"
	"verify_keep/internal/webutil"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// RouterOptions はルーター構築に必要な設定です
type RouterOptions struct {
	Logger         *slog.Logger
	CORS           config.CORSConfig
	HandlerTimeout time.Duration
	// nil の場合はレート制限を行わない
	RateLimiter *middleware.RateLimiter
	HealthCheck func(ctx context.Context) error
}

// NewRouter は全APIのルーティングとミドルウェアを組み立てます
func NewRouter(opts RouterOptions, authHandler *AuthHandler, contactHandler *ContactHandler) http.Handler {
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = config.DefaultHandlerTimeout
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.LoggingMiddleware(opts.Logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   opts.CORS.AllowedOrigins,
		AllowedMethods:   opts.CORS.AllowedMethods,
		AllowedHeaders:   opts.CORS.AllowedHeaders,
		ExposedHeaders:   opts.CORS.ExposedHeaders,
		AllowCredentials: opts.CORS.AllowCredentials,
		MaxAge:           opts.CORS.MaxAge,
		Debug:            false,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(opts.HandlerTimeout))

	// サブルーターに引き継がせるため Route より前に設定する
	r.MethodNotAllowed(webutil.RespondMethodNotAllowed)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		webutil.RespondWithJSON(w, r, http.StatusNotFound, model.APIResponse{
			Success: false,
			Message: "Not found.",
			Code:    "NOT_FOUND",
		})
	})

	limited := func(h http.HandlerFunc) http.Handler {
		if opts.RateLimiter == nil {
			return h
		}
		return opts.RateLimiter.Handle(h)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/verification", func(r chi.Router) {
			r.Method(http.MethodPost, "/send", limited(authHandler.SendVerification))
			r.Method(http.MethodPost, "/resend", limited(authHandler.ResendVerification))
			r.Post("/verify", authHandler.VerifyEmail)
		})

		r.Route("/password-reset", func(r chi.Router) {
			r.Method(http.MethodPost, "/send", limited(authHandler.SendPasswordReset))
			r.Post("/verify", authHandler.VerifyResetToken)
			r.Post("/reset", authHandler.ResetPassword)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/email-verified", authHandler.CheckEmailVerified)
			r.Post("/exists", authHandler.CheckSubjectExists)
		})

		r.Method(http.MethodPost, "/contact", limited(contactHandler.SendContact))
		r.Method(http.MethodPost, "/job-applications", limited(contactHandler.SendJobApplication))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if opts.HealthCheck != nil {
			if err := opts.HealthCheck(r.Context()); err != nil {
				middleware.GetLogger(r.Context()).Error("Health check failed", "error", err)
				webutil.RespondWithJSON(w, r, http.StatusServiceUnavailable, model.APIResponse{
					Success: false,
					Message: "Health check failed.",
					Code:    "UNHEALTHY",
				})
				return
			}
		}
		webutil.RespondWithJSON(w, r, http.StatusOK, model.APIResponse{Success: true, Message: "OK"})
	})

	return r
}
