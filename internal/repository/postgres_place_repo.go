package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/resenia/internal/model"
)

// PostgresPlaceRepo はPostgreSQLを使用した店舗リポジトリ。
type PostgresPlaceRepo struct {
	db *sql.DB
}

// NewPostgresPlaceRepo はPostgresPlaceRepoを生成する。
func NewPostgresPlaceRepo(db *sql.DB) *PostgresPlaceRepo {
	return &PostgresPlaceRepo{db: db}
}

// Create は店舗を作成し、採番されたIDをplaceに埋める。
func (r *PostgresPlaceRepo) Create(ctx context.Context, place *model.Place) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO places (name, address, maps_url, preview_title)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''))
		 RETURNING id, created_at`,
		place.Name, place.Address, place.MapsURL, place.PreviewTitle,
	).Scan(&place.ID, &place.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create place: %w", err)
	}
	return nil
}

// FindByID は指定IDの店舗を取得する。見つからない場合はnilを返す。
func (r *PostgresPlaceRepo) FindByID(ctx context.Context, id int64) (*model.Place, error) {
	place := &model.Place{}
	var address, mapsURL, previewTitle sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, address, maps_url, preview_title, created_at
		 FROM places WHERE id = $1`,
		id,
	).Scan(&place.ID, &place.Name, &address, &mapsURL, &previewTitle, &place.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find place: %w", err)
	}

	place.Address = address.String
	place.MapsURL = mapsURL.String
	place.PreviewTitle = previewTitle.String
	return place, nil
}

// List は全店舗を作成日時の降順で返す。
func (r *PostgresPlaceRepo) List(ctx context.Context) ([]*model.Place, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, address, maps_url, preview_title, created_at
		 FROM places ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	defer rows.Close()

	var places []*model.Place
	for rows.Next() {
		place := &model.Place{}
		var address, mapsURL, previewTitle sql.NullString
		if err := rows.Scan(&place.ID, &place.Name, &address, &mapsURL, &previewTitle, &place.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		place.Address = address.String
		place.MapsURL = mapsURL.String
		place.PreviewTitle = previewTitle.String
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate places: %w", err)
	}

	return places, nil
}

// compile-time interface check
var _ PlaceRepository = (*PostgresPlaceRepo)(nil)
