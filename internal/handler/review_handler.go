package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/resenia/internal/middleware"
	"github.com/hitoshi/resenia/internal/model"
	"github.com/hitoshi/resenia/internal/review"
)

// ReviewService はレビュー管理のインターフェース。
type ReviewService interface {
	Create(ctx context.Context, input review.CreateInput) (*model.Review, error)
	ListWithPlace(ctx context.Context) ([]model.ReviewWithPlace, error)
	ListByPlaceID(ctx context.Context, placeID int64) ([]*model.Review, error)
}

// ReviewHandler はレビュー関連のHTTPエンドポイントを処理する。
type ReviewHandler struct {
	reviewService ReviewService
}

// NewReviewHandler はReviewHandlerの新しいインスタンスを生成する。
func NewReviewHandler(reviewService ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// createReviewRequest はレビュー登録のリクエストボディ。
// user_idは含まない。投稿者は必ずセッションから解決される。
type createReviewRequest struct {
	PlaceID        int64    `json:"place_id"`
	WeeklySalary   float64  `json:"weekly_salary"`
	WeeklyTips     *float64 `json:"weekly_tips"`
	ShiftDaysCount int      `json:"shift_days_count"`
	ShiftDuration  int      `json:"shift_duration"`
	SocialSecurity *bool    `json:"social_security"`
	Comment        string   `json:"comment"`
}

// reviewResponse はレビューのレスポンス。
type reviewResponse struct {
	ID             int64     `json:"id"`
	PlaceID        int64     `json:"place_id"`
	PlaceName      string    `json:"place_name,omitempty"`
	WeeklySalary   float64   `json:"weekly_salary"`
	WeeklyTips     *float64  `json:"weekly_tips"`
	ShiftDaysCount int       `json:"shift_days_count"`
	ShiftDuration  int       `json:"shift_duration"`
	SocialSecurity *bool     `json:"social_security"`
	Comment        string    `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toReviewResponse(rv *model.Review, placeName string) reviewResponse {
	return reviewResponse{
		ID:             rv.ID,
		PlaceID:        rv.PlaceID,
		PlaceName:      placeName,
		WeeklySalary:   rv.WeeklySalary,
		WeeklyTips:     rv.WeeklyTips,
		ShiftDaysCount: rv.ShiftDaysCount,
		ShiftDuration:  rv.ShiftDuration,
		SocialSecurity: rv.SocialSecurity,
		Comment:        rv.Comment,
		CreatedAt:      rv.CreatedAt,
	}
}

// Create はPOST /api/reviewsを処理する。認証必須。
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUserNotFoundError())
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidReviewError("リクエストボディの形式が不正です"))
		return
	}

	created, err := h.reviewService.Create(r.Context(), review.CreateInput{
		PlaceID:        req.PlaceID,
		UserID:         user.ID,
		WeeklySalary:   req.WeeklySalary,
		WeeklyTips:     req.WeeklyTips,
		ShiftDaysCount: req.ShiftDaysCount,
		ShiftDuration:  req.ShiftDuration,
		SocialSecurity: req.SocialSecurity,
		Comment:        req.Comment,
	})
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			status := http.StatusBadRequest
			if apiErr.Code == model.ErrCodePlaceNotFound {
				status = http.StatusNotFound
			}
			middleware.WriteErrorResponse(w, status, apiErr)
			return
		}
		slog.Error("レビューの登録に失敗しました", "error", err)
		middleware.WriteInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toReviewResponse(created, ""))
}

// List はGET /api/reviewsを処理する。認証は任意。
// 全レビューを店舗名付きで新しい順に返す。
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.ListWithPlace(r.Context())
	if err != nil {
		slog.Error("レビュー一覧の取得に失敗しました", "error", err)
		middleware.WriteInternalServerError(w)
		return
	}

	resp := make([]reviewResponse, 0, len(reviews))
	for i := range reviews {
		resp = append(resp, toReviewResponse(&reviews[i].Review, reviews[i].PlaceName))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListByPlace はGET /api/places/{placeID}/reviewsを処理する。認証は任意。
func (h *ReviewHandler) ListByPlace(w http.ResponseWriter, r *http.Request) {
	placeID, err := strconv.ParseInt(chi.URLParam(r, "placeID"), 10, 64)
	if err != nil || placeID <= 0 {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidReviewError("店舗IDが不正です"))
		return
	}

	reviews, err := h.reviewService.ListByPlaceID(r.Context(), placeID)
	if err != nil {
		slog.Error("レビュー一覧の取得に失敗しました", "error", err)
		middleware.WriteInternalServerError(w)
		return
	}

	resp := make([]reviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		resp = append(resp, toReviewResponse(rv, ""))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
