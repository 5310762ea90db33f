package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Pinger はストアの死活確認のインターフェース。
// *sql.DBがそのまま満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックエンドポイントを処理する。
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler はHealthHandlerの新しいインスタンスを生成する。
// dbがnilの場合（インメモリストア構成）はストア確認をスキップする。
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health はGET /healthを処理する。
// ストアへの到達性を確認し、正常なら200、異常なら503を返す。
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			slog.Error("ヘルスチェック: ストアへの接続に失敗しました", "error", err)
			status = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
