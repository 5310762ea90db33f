package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/resenia/internal/model"
)

// mockUserResolver はUserResolverのモック。
type mockUserResolver struct {
	findUserByTokenFn func(ctx context.Context, token string) (*model.User, error)
}

func (m *mockUserResolver) FindUserByToken(ctx context.Context, token string) (*model.User, error) {
	if m.findUserByTokenFn != nil {
		return m.findUserByTokenFn(ctx, token)
	}
	return nil, nil
}

var _ UserResolver = (*mockUserResolver)(nil)

// nextHandler はミドルウェア通過後のユーザー解決状態を記録するハンドラーを返す。
func nextHandler(called *bool, resolvedUser **model.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if user, err := UserFromContext(r.Context()); err == nil {
			*resolvedUser = user
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddleware_NoCookie_Returns401(t *testing.T) {
	resolver := &mockUserResolver{}
	var called bool
	var user *model.User

	mw := NewSessionMiddleware(resolver)(nextHandler(&called, &user))

	req := httptest.NewRequest(http.MethodGet, "/api/places", nil)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if called {
		t.Error("next handler should not be called")
	}
}

func TestSessionMiddleware_UnknownToken_Returns401(t *testing.T) {
	resolver := &mockUserResolver{
		findUserByTokenFn: func(ctx context.Context, token string) (*model.User, error) {
			return nil, nil // 未知・期限切れトークン
		},
	}
	var called bool
	var user *model.User

	mw := NewSessionMiddleware(resolver)(nextHandler(&called, &user))

	req := httptest.NewRequest(http.MethodGet, "/api/places", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage-token"})
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if called {
		t.Error("next handler should not be called")
	}
}

func TestSessionMiddleware_StoreError_Returns500(t *testing.T) {
	resolver := &mockUserResolver{
		findUserByTokenFn: func(ctx context.Context, token string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	var called bool
	var user *model.User

	mw := NewSessionMiddleware(resolver)(nextHandler(&called, &user))

	req := httptest.NewRequest(http.MethodGet, "/api/places", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "some-token"})
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	// ストア障害は「未認証」ではなくサーバーエラーとして扱う
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if called {
		t.Error("next handler should not be called")
	}
}

func TestSessionMiddleware_ValidToken_InjectsUser(t *testing.T) {
	resolver := &mockUserResolver{
		findUserByTokenFn: func(ctx context.Context, token string) (*model.User, error) {
			if token != "valid-token" {
				t.Errorf("token = %q, want %q", token, "valid-token")
			}
			return &model.User{ID: 42, Email: "user@example.com"}, nil
		},
	}
	var called bool
	var user *model.User

	mw := NewSessionMiddleware(resolver)(nextHandler(&called, &user))

	req := httptest.NewRequest(http.MethodGet, "/api/places", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-token"})
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !called {
		t.Fatal("next handler should be called")
	}
	if user == nil || user.ID != 42 {
		t.Errorf("resolved user = %+v, want ID 42", user)
	}
}

func TestOptionalSessionMiddleware_NoCookie_PassesThroughAnonymously(t *testing.T) {
	resolver := &mockUserResolver{}
	var called bool
	var user *model.User

	mw := NewOptionalSessionMiddleware(resolver)(nextHandler(&called, &user))

	req := httptest.NewRequest(http.MethodGet, "/api/reviews", nil)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !called {
		t.Error("next handler should be called")
	}
	if user != nil {
		t.Errorf("user should be anonymous, got %+v", user)
	}
}

func TestOptionalSessionMiddleware_UnknownToken_PassesThroughAnonymously(t *testing.T) {
	resolver := &mockUserResolver{
		findUserByTokenFn: func(ctx context.Context, token string) (*model.User, error) {
			return nil, nil
		},
	}
	var called bool
	var user *model.User

	mw := NewOptionalSessionMiddleware(resolver)(nextHandler(&called, &user))

	req := httptest.NewRequest(http.MethodGet, "/api/reviews", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "expired-token"})
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if user != nil {
		t.Errorf("user should be anonymous, got %+v", user)
	}
}

func TestOptionalSessionMiddleware_StoreError_Returns500(t *testing.T) {
	resolver := &mockUserResolver{
		findUserByTokenFn: func(ctx context.Context, token string) (*model.User, error) {
			return nil, errors.New("query timeout")
		},
	}
	var called bool
	var user *model.User

	mw := NewOptionalSessionMiddleware(resolver)(nextHandler(&called, &user))

	req := httptest.NewRequest(http.MethodGet, "/api/reviews", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "some-token"})
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	// 任意認証でもストア障害は匿名扱いにせず500を返す
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if called {
		t.Error("next handler should not be called")
	}
}

func TestUserFromContext_WithoutUser_ReturnsError(t *testing.T) {
	if _, err := UserFromContext(context.Background()); err == nil {
		t.Error("expected error for context without user")
	}
}

func TestContextWithUser_RoundTrip(t *testing.T) {
	user := &model.User{ID: 7, Email: "a@example.com"}
	ctx := ContextWithUser(context.Background(), user)

	got, err := UserFromContext(ctx)
	if err != nil {
		t.Fatalf("UserFromContext() error = %v", err)
	}
	if got.ID != 7 {
		t.Errorf("got.ID = %d, want 7", got.ID)
	}
}
