package review

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/resenia/internal/model"
	"github.com/hitoshi/resenia/internal/repository"
	"github.com/hitoshi/resenia/internal/security"
)

// --- モック定義 ---

type mockReviewRepo struct {
	createFn        func(ctx context.Context, review *model.Review) error
	listWithPlaceFn func(ctx context.Context) ([]model.ReviewWithPlace, error)
	listByPlaceIDFn func(ctx context.Context, placeID int64) ([]*model.Review, error)
}

func (m *mockReviewRepo) Create(ctx context.Context, review *model.Review) error {
	if m.createFn != nil {
		return m.createFn(ctx, review)
	}
	review.ID = 1
	return nil
}

func (m *mockReviewRepo) ListWithPlace(ctx context.Context) ([]model.ReviewWithPlace, error) {
	if m.listWithPlaceFn != nil {
		return m.listWithPlaceFn(ctx)
	}
	return nil, nil
}

func (m *mockReviewRepo) ListByPlaceID(ctx context.Context, placeID int64) ([]*model.Review, error) {
	if m.listByPlaceIDFn != nil {
		return m.listByPlaceIDFn(ctx, placeID)
	}
	return nil, nil
}

var _ repository.ReviewRepository = (*mockReviewRepo)(nil)

type mockPlaceRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*model.Place, error)
}

func (m *mockPlaceRepo) Create(ctx context.Context, place *model.Place) error {
	return nil
}

func (m *mockPlaceRepo) FindByID(ctx context.Context, id int64) (*model.Place, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.Place{ID: id, Name: "Test Place"}, nil
}

func (m *mockPlaceRepo) List(ctx context.Context) ([]*model.Place, error) {
	return nil, nil
}

var _ repository.PlaceRepository = (*mockPlaceRepo)(nil)

func validInput() CreateInput {
	return CreateInput{
		PlaceID:        1,
		UserID:         42,
		WeeklySalary:   2500.0,
		ShiftDaysCount: 5,
		ShiftDuration:  8,
	}
}

// --- テスト ---

func TestCreate_ValidInput_PersistsReview(t *testing.T) {
	ctx := context.Background()

	var saved *model.Review
	reviewRepo := &mockReviewRepo{
		createFn: func(ctx context.Context, review *model.Review) error {
			review.ID = 7
			saved = review
			return nil
		},
	}
	svc := NewService(reviewRepo, &mockPlaceRepo{}, nil)

	created, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created.ID != 7 {
		t.Errorf("created.ID = %d, want 7", created.ID)
	}
	if saved.UserID != 42 {
		t.Errorf("saved.UserID = %d, want 42", saved.UserID)
	}
	if saved.WeeklySalary != 2500.0 {
		t.Errorf("saved.WeeklySalary = %v", saved.WeeklySalary)
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	svc := NewService(&mockReviewRepo{}, &mockPlaceRepo{}, nil)

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"週給ゼロ", func(in *CreateInput) { in.WeeklySalary = 0 }},
		{"週給マイナス", func(in *CreateInput) { in.WeeklySalary = -100 }},
		{"チップマイナス", func(in *CreateInput) { tips := -1.0; in.WeeklyTips = &tips }},
		{"勤務日数ゼロ", func(in *CreateInput) { in.ShiftDaysCount = 0 }},
		{"勤務日数8日", func(in *CreateInput) { in.ShiftDaysCount = 8 }},
		{"勤務時間ゼロ", func(in *CreateInput) { in.ShiftDuration = 0 }},
		{"勤務時間25時間", func(in *CreateInput) { in.ShiftDuration = 25 }},
		{"店舗IDゼロ", func(in *CreateInput) { in.PlaceID = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			_, err := svc.Create(context.Background(), input)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Code != model.ErrCodeInvalidReview {
				t.Errorf("code = %q", apiErr.Code)
			}
		})
	}
}

func TestCreate_BoundaryValues_Succeed(t *testing.T) {
	svc := NewService(&mockReviewRepo{}, &mockPlaceRepo{}, nil)

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"勤務日数1日", func(in *CreateInput) { in.ShiftDaysCount = 1 }},
		{"勤務日数7日", func(in *CreateInput) { in.ShiftDaysCount = 7 }},
		{"勤務時間1時間", func(in *CreateInput) { in.ShiftDuration = 1 }},
		{"勤務時間24時間", func(in *CreateInput) { in.ShiftDuration = 24 }},
		{"チップゼロ", func(in *CreateInput) { tips := 0.0; in.WeeklyTips = &tips }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			if _, err := svc.Create(context.Background(), input); err != nil {
				t.Errorf("Create() error = %v", err)
			}
		})
	}
}

func TestCreate_PlaceNotFound_ReturnsNotFoundError(t *testing.T) {
	placeRepo := &mockPlaceRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Place, error) {
			return nil, nil
		},
	}
	svc := NewService(&mockReviewRepo{}, placeRepo, nil)

	_, err := svc.Create(context.Background(), validInput())
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodePlaceNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodePlaceNotFound)
	}
}

func TestCreate_SanitizesComment(t *testing.T) {
	var saved *model.Review
	reviewRepo := &mockReviewRepo{
		createFn: func(ctx context.Context, review *model.Review) error {
			saved = review
			return nil
		},
	}
	svc := NewService(reviewRepo, &mockPlaceRepo{}, security.NewContentSanitizer())

	input := validInput()
	input.Comment = `<p>良い職場</p><script>alert('xss')</script>`

	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if saved.Comment != "<p>良い職場</p>" {
		t.Errorf("comment = %q, script should be stripped", saved.Comment)
	}
}

func TestCreate_StoreError_ReturnsError(t *testing.T) {
	reviewRepo := &mockReviewRepo{
		createFn: func(ctx context.Context, review *model.Review) error {
			return errors.New("insert failed")
		},
	}
	svc := NewService(reviewRepo, &mockPlaceRepo{}, nil)

	if _, err := svc.Create(context.Background(), validInput()); err == nil {
		t.Error("expected error")
	}
}

func TestListWithPlace_ReturnsReviews(t *testing.T) {
	reviewRepo := &mockReviewRepo{
		listWithPlaceFn: func(ctx context.Context) ([]model.ReviewWithPlace, error) {
			return []model.ReviewWithPlace{
				{Review: model.Review{ID: 2}, PlaceName: "B"},
				{Review: model.Review{ID: 1}, PlaceName: "A"},
			}, nil
		},
	}
	svc := NewService(reviewRepo, &mockPlaceRepo{}, nil)

	reviews, err := svc.ListWithPlace(context.Background())
	if err != nil {
		t.Fatalf("ListWithPlace() error = %v", err)
	}
	if len(reviews) != 2 {
		t.Errorf("len = %d, want 2", len(reviews))
	}
	if reviews[0].PlaceName != "B" {
		t.Errorf("first place name = %q", reviews[0].PlaceName)
	}
}

func TestListByPlaceID_ReturnsReviews(t *testing.T) {
	reviewRepo := &mockReviewRepo{
		listByPlaceIDFn: func(ctx context.Context, placeID int64) ([]*model.Review, error) {
			if placeID != 5 {
				t.Errorf("placeID = %d, want 5", placeID)
			}
			return []*model.Review{{ID: 1, PlaceID: 5}}, nil
		},
	}
	svc := NewService(reviewRepo, &mockPlaceRepo{}, nil)

	reviews, err := svc.ListByPlaceID(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListByPlaceID() error = %v", err)
	}
	if len(reviews) != 1 {
		t.Errorf("len = %d, want 1", len(reviews))
	}
}
