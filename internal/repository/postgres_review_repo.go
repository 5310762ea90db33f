package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/resenia/internal/model"
)

// PostgresReviewRepo はPostgreSQLを使用したレビューリポジトリ。
type PostgresReviewRepo struct {
	db *sql.DB
}

// NewPostgresReviewRepo はPostgresReviewRepoを生成する。
func NewPostgresReviewRepo(db *sql.DB) *PostgresReviewRepo {
	return &PostgresReviewRepo{db: db}
}

// Create はレビューを作成し、採番されたIDをreviewに埋める。
func (r *PostgresReviewRepo) Create(ctx context.Context, review *model.Review) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO reviews
		   (place_id, user_id, weekly_salary, weekly_tips,
		    shift_days_count, shift_duration, social_security, comment)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		 RETURNING id, created_at`,
		review.PlaceID, review.UserID, review.WeeklySalary, review.WeeklyTips,
		review.ShiftDaysCount, review.ShiftDuration, review.SocialSecurity, review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// ListWithPlace は全レビューを店舗名付きで作成日時の降順で返す。
func (r *PostgresReviewRepo) ListWithPlace(ctx context.Context) ([]model.ReviewWithPlace, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.place_id, r.user_id, r.weekly_salary, r.weekly_tips,
		        r.shift_days_count, r.shift_duration, r.social_security,
		        r.comment, r.created_at, p.name
		 FROM reviews r
		 JOIN places p ON p.id = r.place_id
		 ORDER BY r.created_at DESC, r.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.ReviewWithPlace
	for rows.Next() {
		var rv model.ReviewWithPlace
		var tips sql.NullFloat64
		var social sql.NullBool
		var comment sql.NullString
		if err := rows.Scan(&rv.ID, &rv.PlaceID, &rv.UserID, &rv.WeeklySalary, &tips,
			&rv.ShiftDaysCount, &rv.ShiftDuration, &social,
			&comment, &rv.CreatedAt, &rv.PlaceName); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		if tips.Valid {
			v := tips.Float64
			rv.WeeklyTips = &v
		}
		if social.Valid {
			v := social.Bool
			rv.SocialSecurity = &v
		}
		rv.Comment = comment.String
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}

// ListByPlaceID は指定店舗のレビューを作成日時の降順で返す。
func (r *PostgresReviewRepo) ListByPlaceID(ctx context.Context, placeID int64) ([]*model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, place_id, user_id, weekly_salary, weekly_tips,
		        shift_days_count, shift_duration, social_security, comment, created_at
		 FROM reviews
		 WHERE place_id = $1
		 ORDER BY created_at DESC, id DESC`,
		placeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews by place: %w", err)
	}
	defer rows.Close()

	var reviews []*model.Review
	for rows.Next() {
		rv := &model.Review{}
		var tips sql.NullFloat64
		var social sql.NullBool
		var comment sql.NullString
		if err := rows.Scan(&rv.ID, &rv.PlaceID, &rv.UserID, &rv.WeeklySalary, &tips,
			&rv.ShiftDaysCount, &rv.ShiftDuration, &social, &comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		if tips.Valid {
			v := tips.Float64
			rv.WeeklyTips = &v
		}
		if social.Valid {
			v := social.Bool
			rv.SocialSecurity = &v
		}
		rv.Comment = comment.String
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}

// compile-time interface check
var _ ReviewRepository = (*PostgresReviewRepo)(nil)
