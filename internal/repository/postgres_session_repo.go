package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/resenia/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create はセッションを作成し、採番されたIDをsessionに埋める。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO sessions (user_id, session_token, access_token, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		session.UserID, session.Token, session.AccessToken, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByToken は指定トークンのセッションを取得する。
// 見つからない、または期限切れの場合はnilを返す。
func (r *PostgresSessionRepo) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	session := &model.Session{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, session_token, access_token, expires_at, created_at
		 FROM sessions
		 WHERE session_token = $1 AND expires_at > now()`,
		token,
	).Scan(&session.ID, &session.UserID, &session.Token,
		&session.AccessToken, &session.ExpiresAt, &session.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return session, nil
}

// FindUserByToken はセッショントークンからユーザーを解決する。
// sessions → usersのJOINを1クエリで行う。
// トークンが未知・期限切れの場合は(nil, nil)を返す。
func (r *PostgresSessionRepo) FindUserByToken(ctx context.Context, token string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.created_at
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.session_token = $1 AND s.expires_at > now()`,
		token,
	).Scan(&user.ID, &user.Email, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by session token: %w", err)
	}

	return user, nil
}

// DeleteByToken は指定トークンのセッションを削除する。
func (r *PostgresSessionRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUserID は指定ユーザーの全セッションを削除する。
func (r *PostgresSessionRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
// クリーンアップジョブから日次で呼ばれる。冪等。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
