// Package review は給与レビューの登録・閲覧ロジックを提供する。
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/resenia/internal/model"
	"github.com/hitoshi/resenia/internal/repository"
	"github.com/hitoshi/resenia/internal/security"
)

// maxCommentLength はコメントの最大文字数。
const maxCommentLength = 2000

// CreateInput はレビュー登録のリクエストパラメータ。
// UserIDはセッションから解決された値のみを受け取る。
type CreateInput struct {
	PlaceID        int64
	UserID         int64
	WeeklySalary   float64
	WeeklyTips     *float64
	ShiftDaysCount int
	ShiftDuration  int
	SocialSecurity *bool
	Comment        string
}

// Service はレビューのビジネスロジックを提供する。
type Service struct {
	reviewRepo repository.ReviewRepository
	placeRepo  repository.PlaceRepository
	sanitizer  security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(reviewRepo repository.ReviewRepository, placeRepo repository.PlaceRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		reviewRepo: reviewRepo,
		placeRepo:  placeRepo,
		sanitizer:  sanitizer,
	}
}

// Create はレビューを検証して登録する。
// 対象店舗が存在しない場合はPLACE_NOT_FOUNDエラーを返す。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Review, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	place, err := s.placeRepo.FindByID(ctx, input.PlaceID)
	if err != nil {
		return nil, fmt.Errorf("店舗の確認に失敗しました: %w", err)
	}
	if place == nil {
		return nil, model.NewPlaceNotFoundError(input.PlaceID)
	}

	comment := strings.TrimSpace(input.Comment)
	if comment != "" && s.sanitizer != nil {
		comment = s.sanitizer.Sanitize(comment)
	}

	review := &model.Review{
		PlaceID:        input.PlaceID,
		UserID:         input.UserID,
		WeeklySalary:   input.WeeklySalary,
		WeeklyTips:     input.WeeklyTips,
		ShiftDaysCount: input.ShiftDaysCount,
		ShiftDuration:  input.ShiftDuration,
		SocialSecurity: input.SocialSecurity,
		Comment:        comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("レビューの登録に失敗しました: %w", err)
	}

	slog.Info("レビューを登録しました", "review_id", review.ID, "place_id", review.PlaceID, "user_id", review.UserID)
	return review, nil
}

// ListWithPlace は全レビューを店舗名付きで新しい順に取得する。
func (s *Service) ListWithPlace(ctx context.Context) ([]model.ReviewWithPlace, error) {
	reviews, err := s.reviewRepo.ListWithPlace(ctx)
	if err != nil {
		return nil, fmt.Errorf("レビュー一覧の取得に失敗しました: %w", err)
	}
	return reviews, nil
}

// ListByPlaceID は指定店舗のレビューを新しい順に取得する。
func (s *Service) ListByPlaceID(ctx context.Context, placeID int64) ([]*model.Review, error) {
	reviews, err := s.reviewRepo.ListByPlaceID(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("レビュー一覧の取得に失敗しました: %w", err)
	}
	return reviews, nil
}

// validateInput はレビュー入力を検証する。
func validateInput(input CreateInput) error {
	if input.PlaceID <= 0 {
		return model.NewInvalidReviewError("店舗IDが不正です")
	}
	if input.WeeklySalary <= 0 {
		return model.NewInvalidReviewError("週給は0より大きい値を指定してください")
	}
	if input.WeeklyTips != nil && *input.WeeklyTips < 0 {
		return model.NewInvalidReviewError("チップは0以上の値を指定してください")
	}
	if input.ShiftDaysCount < 1 || input.ShiftDaysCount > 7 {
		return model.NewInvalidReviewError("週あたりの勤務日数は1〜7で指定してください")
	}
	if input.ShiftDuration < 1 || input.ShiftDuration > 24 {
		return model.NewInvalidReviewError("1日あたりの勤務時間は1〜24で指定してください")
	}
	if len([]rune(input.Comment)) > maxCommentLength {
		return model.NewInvalidReviewError(fmt.Sprintf("コメントは%d文字以内で指定してください", maxCommentLength))
	}
	return nil
}
