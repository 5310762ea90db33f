package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/resenia/internal/model"
	"github.com/hitoshi/resenia/internal/repository"
)

type mockSessionRepo struct {
	deleteExpiredFn func(ctx context.Context) (int64, error)
}

func (m *mockSessionRepo) Create(_ context.Context, _ *model.Session) error { return nil }

func (m *mockSessionRepo) FindByToken(_ context.Context, _ string) (*model.Session, error) {
	return nil, nil
}

func (m *mockSessionRepo) FindUserByToken(_ context.Context, _ string) (*model.User, error) {
	return nil, nil
}

func (m *mockSessionRepo) DeleteByToken(_ context.Context, _ string) error { return nil }
func (m *mockSessionRepo) DeleteByUserID(_ context.Context, _ int64) error { return nil }

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

var _ repository.SessionRepository = (*mockSessionRepo)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRun_DeletesExpiredSessions(t *testing.T) {
	called := false
	repo := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			called = true
			return 3, nil
		},
	}
	job := NewSessionCleanupJob(repo, discardLogger())

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !called {
		t.Error("DeleteExpired should be called")
	}
}

func TestRun_NoExpiredSessions_Succeeds(t *testing.T) {
	repo := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 0, nil
		},
	}
	job := NewSessionCleanupJob(repo, discardLogger())

	// 冪等: 削除対象がなくてもエラーにならない
	if err := job.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestRun_StoreError_ReturnsError(t *testing.T) {
	repo := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 0, errors.New("connection refused")
		},
	}
	job := NewSessionCleanupJob(repo, discardLogger())

	if err := job.Run(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestRunLoop_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	runs := make(chan struct{}, 10)
	repo := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			runs <- struct{}{}
			return 0, nil
		},
	}
	job := NewSessionCleanupJob(repo, discardLogger())
	job.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.RunLoop(ctx)
		close(done)
	}()

	// 起動直後の1回目の実行を待つ
	select {
	case <-runs:
	case <-time.After(time.Second):
		t.Fatal("RunLoop should run once immediately")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunLoop should stop on context cancel")
	}
}

func TestRunLoop_ContinuesAfterFailure(t *testing.T) {
	runs := make(chan struct{}, 10)
	repo := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			runs <- struct{}{}
			return 0, errors.New("transient failure")
		},
	}
	job := NewSessionCleanupJob(repo, discardLogger())
	job.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go job.RunLoop(ctx)

	// 失敗後もループが継続して再実行されること
	for i := 0; i < 2; i++ {
		select {
		case <-runs:
		case <-time.After(time.Second):
			t.Fatalf("expected run %d despite failures", i+1)
		}
	}
}

func TestNewSessionCleanupJob_DefaultInterval(t *testing.T) {
	job := NewSessionCleanupJob(&mockSessionRepo{}, discardLogger())

	if job.Interval != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h", job.Interval)
	}
}
