package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type mockPinger struct {
	pingFunc func(ctx context.Context) error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.pingFunc(ctx)
}

var _ Pinger = (*mockPinger)(nil)

func TestHealth_StoreReachable_Returns200(t *testing.T) {
	h := NewHealthHandler(&mockPinger{
		pingFunc: func(ctx context.Context) error { return nil },
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHealth_StoreUnreachable_Returns503(t *testing.T) {
	h := NewHealthHandler(&mockPinger{
		pingFunc: func(ctx context.Context) error { return errors.New("connection refused") },
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if !strings.Contains(rec.Body.String(), `"unavailable"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHealth_NilDB_Returns200(t *testing.T) {
	// インメモリストア構成ではDBなしでも正常を返す
	h := NewHealthHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
