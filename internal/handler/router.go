package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/saasseed/internal/metrics"
	"github.com/hitoshi/saasseed/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	HealthChecker HealthChecker
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger
}

// NewRouter はステータスサーバーのルーティングを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → LoggingMiddleware
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	r.Method(http.MethodGet, "/health", NewHealthHandler(deps.HealthChecker, deps.Logger))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	return r
}
