package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/resenia/internal/model"
)

func TestWriteErrorResponse_WritesUnifiedFormat(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteErrorResponse(rec, http.StatusUnauthorized, model.NewStateMismatchError())

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodeStateMismatch {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeStateMismatch)
	}
	if body.Category != "auth" {
		t.Errorf("category = %q, want auth", body.Category)
	}
	if body.Action == "" {
		t.Error("action should not be empty")
	}
}

func TestWriteInternalServerError_ReturnsGenericMessage(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteInternalServerError(rec)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q", body.Code)
	}

	// スタックトレースやSQL断片のような内部情報を含まないこと
	if strings.Contains(body.Message, "sql") || strings.Contains(body.Message, "panic") {
		t.Errorf("message leaks internals: %q", body.Message)
	}
}
