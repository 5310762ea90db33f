// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/resenia/internal/model"
)

// SessionCookieName はセッショントークンを保持するCookieの名前。
const SessionCookieName = "session_token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに解決済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// UserResolver はセッショントークンからユーザーを解決するインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
// トークンが未知・期限切れの場合は(nil, nil)を返すこと。
type UserResolver interface {
	FindUserByToken(ctx context.Context, token string) (*model.User, error)
}

// NewSessionMiddleware はセッション必須ルート用のミドルウェアを返す。
// Cookieからセッショントークンを読み取り、ユーザーに解決できた場合のみ
// コンテキストに注入して後続を実行する。
// Cookie欠落・未知トークン・期限切れはいずれも401 Unauthorizedを返す。
// ストアのI/Oエラーは匿名扱いにせず500として伝播する。
func NewSessionMiddleware(resolver UserResolver) func(next http.Handler) http.Handler {
	return sessionMiddleware(resolver, true)
}

// NewOptionalSessionMiddleware はベストエフォート認証用のミドルウェアを返す。
// ユーザーに解決できた場合はコンテキストに注入し、
// 解決できない場合（Cookie欠落・未知トークン）は匿名のまま後続を実行する。
// ストアのI/Oエラーだけは必須モードと同様に500として伝播する。
func NewOptionalSessionMiddleware(resolver UserResolver) func(next http.Handler) http.Handler {
	return sessionMiddleware(resolver, false)
}

func sessionMiddleware(resolver UserResolver, required bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Cookieからセッショントークンを取得
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				if required {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// 2. トークンをユーザーに解決
			user, err := resolver.FindUserByToken(r.Context(), cookie.Value)
			if err != nil {
				// 接続断・クエリ失敗は「未認証」ではなくストア障害として扱う
				slog.Error("failed to resolve session",
					slog.String("error", err.Error()),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				// 未知・期限切れトークンはCookieなしと同じ扱い
				if required {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// 3. 解決済みユーザーをコンテキストに注入
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext はリクエストコンテキストから解決済みユーザーを取得する。
// セッションミドルウェアを通過した認証済みリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// ContextWithUser はコンテキストにユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
