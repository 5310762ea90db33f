package place

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hitoshi/resenia/internal/model"
	"github.com/hitoshi/resenia/internal/repository"
)

// maxNameLength は店舗名の最大文字数。
const maxNameLength = 80

// CreateInput は店舗登録のリクエストパラメータ。
type CreateInput struct {
	Name    string
	Address string
	MapsURL string
}

// Service は店舗管理のビジネスロジックを提供する。
type Service struct {
	placeRepo      repository.PlaceRepository
	previewFetcher PreviewFetcherService
	ssrfGuard      SSRFValidator
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(placeRepo repository.PlaceRepository, previewFetcher PreviewFetcherService, ssrfGuard SSRFValidator) *Service {
	return &Service{
		placeRepo:      placeRepo,
		previewFetcher: previewFetcher,
		ssrfGuard:      ssrfGuard,
	}
}

// Create は店舗を検証して登録する。
// maps_urlが指定されている場合、内部アドレスを指すURLは登録自体を拒否し、
// ページタイトルをベストエフォートで取得して保存する。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Place, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, model.NewInvalidPlaceError("店舗名は必須です")
	}
	if len([]rune(name)) > maxNameLength {
		return nil, model.NewInvalidPlaceError(fmt.Sprintf("店舗名は%d文字以内で指定してください", maxNameLength))
	}

	mapsURL := strings.TrimSpace(input.MapsURL)
	if mapsURL != "" {
		if err := validateMapsURL(mapsURL); err != nil {
			return nil, err
		}
		if s.ssrfGuard != nil {
			if err := s.ssrfGuard.ValidateURL(mapsURL); err != nil {
				slog.Warn("店舗登録: 地図URLがセキュリティポリシーに違反", "url", mapsURL, "error", err)
				return nil, model.NewSSRFBlockedError()
			}
		}
	}

	previewTitle := ""
	if mapsURL != "" && s.previewFetcher != nil {
		previewTitle = s.previewFetcher.FetchTitle(ctx, mapsURL)
	}

	place := &model.Place{
		Name:         name,
		Address:      strings.TrimSpace(input.Address),
		MapsURL:      mapsURL,
		PreviewTitle: previewTitle,
	}
	if err := s.placeRepo.Create(ctx, place); err != nil {
		return nil, fmt.Errorf("店舗の登録に失敗しました: %w", err)
	}

	slog.Info("店舗を登録しました", "place_id", place.ID, "name", place.Name)
	return place, nil
}

// FindByID は指定IDの店舗を取得する。存在しない場合はnilを返す。
func (s *Service) FindByID(ctx context.Context, id int64) (*model.Place, error) {
	place, err := s.placeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("店舗の取得に失敗しました: %w", err)
	}
	return place, nil
}

// List は店舗一覧を新しい順に取得する。
func (s *Service) List(ctx context.Context) ([]*model.Place, error) {
	places, err := s.placeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("店舗一覧の取得に失敗しました: %w", err)
	}
	return places, nil
}

// validateMapsURL は地図URLの形式を検証する。
// http/httpsスキームのみ許可する。
func validateMapsURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return model.NewInvalidURLError("地図URLの形式が不正です")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return model.NewInvalidURLError("地図URLはhttpまたはhttpsで指定してください")
	}
	if parsed.Host == "" {
		return model.NewInvalidURLError("地図URLのホストが不正です")
	}
	return nil
}
