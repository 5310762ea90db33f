package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/resenia/internal/middleware"
	"github.com/hitoshi/resenia/internal/model"
)

// UserService はユーザーアカウント管理のインターフェース。
type UserService interface {
	Withdraw(ctx context.Context, userID int64) error
}

// UserHandler はユーザー関連のHTTPエンドポイントを処理する。
type UserHandler struct {
	userService UserService
	cookie      CookieConfig
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成する。
func NewUserHandler(userService UserService, cookie CookieConfig) *UserHandler {
	return &UserHandler{
		userService: userService,
		cookie:      cookie,
	}
}

// Withdraw はDELETE /api/users/meを処理する。認証必須。
// ユーザー本体・全セッション・投稿済みレビューを削除し、Cookieを失効させる。
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUserNotFoundError())
		return
	}

	if err := h.userService.Withdraw(r.Context(), user.ID); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			middleware.WriteErrorResponse(w, http.StatusNotFound, apiErr)
			return
		}
		slog.Error("退会処理に失敗しました", "error", err, "user_id", user.ID)
		middleware.WriteInternalServerError(w)
		return
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
