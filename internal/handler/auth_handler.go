// Package handler はHTTPリクエストの処理を提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/resenia/internal/auth"
	"github.com/hitoshi/resenia/internal/metrics"
	"github.com/hitoshi/resenia/internal/middleware"
	"github.com/hitoshi/resenia/internal/model"
)

// StateCookieName はCSRF防止用stateトークンを保持するCookieの名前。
const StateCookieName = "oauth_state"

// stateCookieMaxAge はstate Cookieの有効期間（秒）。
// IdPでの認証に要する時間だけ持てばよい。
const stateCookieMaxAge = 600

// AuthService は認証フローのオーケストレーションのインターフェース。
// auth.Serviceを抽象化してテスタビリティを向上させる。
type AuthService interface {
	AuthorizeURL(state string) string
	HandleCallback(ctx context.Context, code string) (*model.Session, error)
	Logout(ctx context.Context, token string) error
}

// CookieConfig はセッション・state Cookieの属性設定。
type CookieConfig struct {
	Secure bool
	Domain string
	MaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は認証関連のHTTPエンドポイントを処理する。
type AuthHandler struct {
	authService AuthService
	metrics     metrics.AuthMetricsCollector
	cookie      CookieConfig
	// postLoginURL はログイン完了後のリダイレクト先（フロントエンドのURL）。
	postLoginURL string
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成する。
func NewAuthHandler(authService AuthService, collector metrics.AuthMetricsCollector, cookie CookieConfig, postLoginURL string) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		metrics:      collector,
		cookie:       cookie,
		postLoginURL: postLoginURL,
	}
}

// Login はGET /auth/loginを処理する。
// CSRF防止用のstateトークンを生成してCookieに保存し、
// IdPの認可エンドポイントへ302リダイレクトする。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateToken()
	if err != nil {
		slog.Error("stateトークンの生成に失敗しました", "error", err)
		middleware.WriteInternalServerError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	if h.metrics != nil {
		h.metrics.RecordLoginInitiated()
	}
	http.Redirect(w, r, h.authService.AuthorizeURL(state), http.StatusFound)
}

// Callback はGET /auth/callbackを処理する。
// stateの一致を検証してからコード交換・セッション発行を行い、
// 成功時のみセッションCookieを設定してフロントエンドへリダイレクトする。
// stateは一度の検証で消費され、Cookieは成否にかかわらず即座に破棄される。
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	stateCookie, cookieErr := r.Cookie(StateCookieName)

	// stateの単回使用: 検証の前にCookieを破棄する
	h.clearStateCookie(w)

	if code == "" || state == "" {
		slog.Warn("コールバックのパラメータが不足しています",
			slog.Bool("has_code", code != ""),
			slog.Bool("has_state", state != ""),
		)
		h.recordFailure(metrics.FailureReasonMissingParams)
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "OAUTH_MISSING_PARAMS",
			Message:  "認証コールバックのパラメータが不足しています。",
			Category: "auth",
			Action:   "ログインを最初からやり直してください。",
		})
		return
	}

	if cookieErr != nil || stateCookie.Value == "" || stateCookie.Value != state {
		slog.Warn("stateの検証に失敗しました",
			slog.Bool("has_cookie", cookieErr == nil),
		)
		h.recordFailure(metrics.FailureReasonStateMismatch)
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewStateMismatchError())
		return
	}

	session, err := h.authService.HandleCallback(r.Context(), code)
	if err != nil {
		slog.Error("コールバック処理に失敗しました", "error", err)
		if errors.Is(err, auth.ErrProvider) {
			h.recordFailure(metrics.FailureReasonProvider)
		} else {
			h.recordFailure(metrics.FailureReasonStore)
		}
		middleware.WriteInternalServerError(w)
		return
	}

	// セッション行の永続化が完了した後でのみCookieを発行する
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   h.cookie.MaxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	if h.metrics != nil {
		h.metrics.RecordCallbackSuccess()
		h.metrics.RecordSessionCreated()
		h.metrics.RecordCallbackLatency(time.Since(start))
	}
	http.Redirect(w, r, h.postLoginURL, http.StatusFound)
}

// Logout はPOST /auth/logoutを処理する。
// セッション行を破棄し、Cookieを失効させる。
// Cookieがない場合でも204を返す（冪等）。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			slog.Error("ログアウト処理に失敗しました", "error", err)
			middleware.WriteInternalServerError(w)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// userResponse は認証済みユーザーのレスポンス。
type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Me はGET /auth/meを処理する。
// セッションミドルウェアで解決済みのユーザーを返す。
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUserNotFoundError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

// clearStateCookie はstate Cookieを即座に失効させる。
func (h *AuthHandler) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) recordFailure(reason string) {
	if h.metrics != nil {
		h.metrics.RecordCallbackFailure(reason)
	}
}
