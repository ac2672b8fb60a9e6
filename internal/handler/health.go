// Package handler はステータスサーバーのHTTPハンドラーを提供する。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/saasseed/internal/middleware"
)

// HealthChecker はデータベースの疎通確認インターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// HealthHandler は/healthエンドポイントを処理する。
type HealthHandler struct {
	checker HealthChecker
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(checker HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		timeout: 3 * time.Second,
		logger:  logger,
	}
}

// ServeHTTP はデータベースへのPing結果に応じて200または503を返す。
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.checker.PingContext(ctx); err != nil {
		h.logger.Warn("ヘルスチェックに失敗しました", slog.String("error", err.Error()))
		middleware.WriteErrorResponse(w, http.StatusServiceUnavailable,
			"DB_UNAVAILABLE", "データベースに接続できません。")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
