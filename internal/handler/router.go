package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/todosync/internal/metrics"
	"github.com/hitoshi/todosync/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Collector         metrics.MetricsCollector
	Gatherer          prometheus.Gatherer
	Sanitizer         Sanitizer

	Auth             AuthUseCases
	ObserveAuthState ObserveAuthStateUseCase
	Todos            TodoUseCases
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS → RateLimit(General)
//
// /auth/register, /auth/login, /auth/password-reset には認証操作用のレート制限を追加する。
// /auth/profile と /api/todos はサインイン必須。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.Collector != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Collector))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.Auth, deps.Sanitizer, deps.Collector)
	todoHandler := NewTodoHandler(deps.Todos, deps.Sanitizer, deps.Collector)
	eventsHandler := NewAuthEventsHandler(deps.ObserveAuthState, originPatterns(deps.CORSAllowedOrigin))
	signedIn := middleware.NewSignedInMiddleware(deps.Auth.CurrentUser)

	r.Get("/health", Health)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if deps.RateLimiter != nil {
					r.Use(deps.RateLimiter.AuthMiddleware())
				}
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/password-reset", authHandler.ResetPassword)
			})
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
			r.Method(http.MethodGet, "/events", eventsHandler)
			r.With(signedIn).Put("/profile", authHandler.UpdateProfile)
		})

		r.Route("/api/todos", func(r chi.Router) {
			r.Use(signedIn)
			r.Get("/", todoHandler.List)
			r.Post("/", todoHandler.Create)
			r.Post("/{id}/toggle", todoHandler.Toggle)
			r.Delete("/{id}", todoHandler.Delete)
		})
	})

	return r
}

// Health はプロセスの生存確認に応答する。
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// originPatterns はCORS許可オリジンからWebSocketのオリジンパターンを作る。
func originPatterns(allowedOrigin string) []string {
	if allowedOrigin == "" {
		return nil
	}
	u, err := url.Parse(allowedOrigin)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}
