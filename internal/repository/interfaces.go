// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/resenia/internal/model"
)

// ErrDuplicateEmail は同一emailのユーザーが既に存在することを示す。
// 同時初回ログインの競合時に返され、呼び出し側は再検索で回復する。
// クライアントに露出することはない。
var ErrDuplicateEmail = errors.New("repository: duplicate email")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はemail完全一致でユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create は新規ユーザーを作成し、ストアが採番したIDを埋めて返す。
	// emailが既に存在する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, email string) (*model.User, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するsessions、reviewsはCASCADE削除される。
	DeleteByID(ctx context.Context, id int64) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成し、ストアが採番したIDをsessionに埋める。
	Create(ctx context.Context, session *model.Session) error

	// FindByToken はセッショントークンでセッションを検索する。
	// 見つからない、または期限切れの場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.Session, error)

	// FindUserByToken はセッショントークンからユーザーを解決する。
	// 保護ルートへの全リクエストで実行される唯一の読み取りパスであり、
	// session_tokenのインデックス検索で行う。
	// トークンが未知・期限切れの場合は(nil, nil)を返す。
	FindUserByToken(ctx context.Context, token string) (*model.User, error)

	// DeleteByToken は指定トークンのセッションを削除する。
	DeleteByToken(ctx context.Context, token string) error

	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID int64) error

	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// PlaceRepository は店舗データの永続化インターフェース。
type PlaceRepository interface {
	// Create は店舗を作成し、ストアが採番したIDをplaceに埋める。
	Create(ctx context.Context, place *model.Place) error

	// FindByID は指定IDの店舗を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Place, error)

	// List は全店舗を作成日時の降順で返す。
	List(ctx context.Context) ([]*model.Place, error)
}

// ReviewRepository はレビューデータの永続化インターフェース。
type ReviewRepository interface {
	// Create はレビューを作成し、ストアが採番したIDをreviewに埋める。
	Create(ctx context.Context, review *model.Review) error

	// ListWithPlace は全レビューを店舗名付きで作成日時の降順で返す。
	ListWithPlace(ctx context.Context) ([]model.ReviewWithPlace, error)

	// ListByPlaceID は指定店舗のレビューを作成日時の降順で返す。
	ListByPlaceID(ctx context.Context, placeID int64) ([]*model.Review, error)
}
