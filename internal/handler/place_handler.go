package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/resenia/internal/middleware"
	"github.com/hitoshi/resenia/internal/model"
	"github.com/hitoshi/resenia/internal/place"
)

// PlaceService は店舗管理のインターフェース。
type PlaceService interface {
	Create(ctx context.Context, input place.CreateInput) (*model.Place, error)
	List(ctx context.Context) ([]*model.Place, error)
}

// PlaceHandler は店舗関連のHTTPエンドポイントを処理する。
type PlaceHandler struct {
	placeService PlaceService
}

// NewPlaceHandler はPlaceHandlerの新しいインスタンスを生成する。
func NewPlaceHandler(placeService PlaceService) *PlaceHandler {
	return &PlaceHandler{
		placeService: placeService,
	}
}

// createPlaceRequest は店舗登録のリクエストボディ。
type createPlaceRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	MapsURL string `json:"maps_url"`
}

// placeResponse は店舗のレスポンス。
type placeResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address,omitempty"`
	MapsURL      string    `json:"maps_url,omitempty"`
	PreviewTitle string    `json:"preview_title,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toPlaceResponse(p *model.Place) placeResponse {
	return placeResponse{
		ID:           p.ID,
		Name:         p.Name,
		Address:      p.Address,
		MapsURL:      p.MapsURL,
		PreviewTitle: p.PreviewTitle,
		CreatedAt:    p.CreatedAt,
	}
}

// Create はPOST /api/placesを処理する。認証必須。
func (h *PlaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserFromContext(r.Context()); err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUserNotFoundError())
		return
	}

	var req createPlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidPlaceError("リクエストボディの形式が不正です"))
		return
	}

	created, err := h.placeService.Create(r.Context(), place.CreateInput{
		Name:    req.Name,
		Address: req.Address,
		MapsURL: req.MapsURL,
	})
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
			return
		}
		slog.Error("店舗の登録に失敗しました", "error", err)
		middleware.WriteInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPlaceResponse(created))
}

// List はGET /api/placesを処理する。認証は任意。
func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	places, err := h.placeService.List(r.Context())
	if err != nil {
		slog.Error("店舗一覧の取得に失敗しました", "error", err)
		middleware.WriteInternalServerError(w)
		return
	}

	resp := make([]placeResponse, 0, len(places))
	for _, p := range places {
		resp = append(resp, toPlaceResponse(p))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
