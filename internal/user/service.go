// Package user はユーザーアカウント管理のロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/resenia/internal/model"
	"github.com/hitoshi/resenia/internal/repository"
)

// Service はユーザーアカウントのビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

// Withdraw はユーザーアカウントを削除する。
// 先に全セッションを破棄してから本体を削除する。
// 投稿済みレビューはストア側のCASCADEで削除される。
func (s *Service) Withdraw(ctx context.Context, userID int64) error {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return model.NewUserNotFoundError()
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("ユーザーを削除しました", "user_id", userID)
	return nil
}
