package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/resenia/internal/middleware"
	"github.com/hitoshi/resenia/internal/model"
)

type mockUserService struct {
	withdrawFunc func(ctx context.Context, userID int64) error
}

func (m *mockUserService) Withdraw(ctx context.Context, userID int64) error {
	return m.withdrawFunc(ctx, userID)
}

var _ UserService = (*mockUserService)(nil)

func TestWithdraw_DeletesAccountAndClearsCookie(t *testing.T) {
	var gotUserID int64
	svc := &mockUserService{
		withdrawFunc: func(ctx context.Context, userID int64) error {
			gotUserID = userID
			return nil
		},
	}
	h := NewUserHandler(svc, CookieConfig{MaxAge: 86400})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	req = req.WithContext(authedContext(42))
	rec := httptest.NewRecorder()

	h.Withdraw(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if gotUserID != 42 {
		t.Errorf("userID = %d, want 42", gotUserID)
	}

	cookie := findCookie(t, rec, middleware.SessionCookieName)
	if cookie.MaxAge >= 0 {
		t.Errorf("cookie.MaxAge = %d, Cookieが失効していない", cookie.MaxAge)
	}
}

func TestWithdraw_WithoutUser_Returns401(t *testing.T) {
	svc := &mockUserService{
		withdrawFunc: func(ctx context.Context, userID int64) error {
			t.Fatal("未認証リクエストでWithdrawが呼ばれた")
			return nil
		},
	}
	h := NewUserHandler(svc, CookieConfig{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	rec := httptest.NewRecorder()

	h.Withdraw(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestWithdraw_UserNotFound_Returns404(t *testing.T) {
	svc := &mockUserService{
		withdrawFunc: func(ctx context.Context, userID int64) error {
			return model.NewUserNotFoundError()
		},
	}
	h := NewUserHandler(svc, CookieConfig{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	req = req.WithContext(authedContext(42))
	rec := httptest.NewRecorder()

	h.Withdraw(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestWithdraw_StoreError_Returns500(t *testing.T) {
	svc := &mockUserService{
		withdrawFunc: func(ctx context.Context, userID int64) error {
			return context.DeadlineExceeded
		},
	}
	h := NewUserHandler(svc, CookieConfig{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	req = req.WithContext(authedContext(42))
	rec := httptest.NewRecorder()

	h.Withdraw(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
