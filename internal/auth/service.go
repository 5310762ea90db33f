// Package auth はOAuth認可コードフローとセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/resenia/internal/model"
	"github.com/hitoshi/resenia/internal/repository"
)

// Provider は外部IdPのインターフェース。
// 3操作はいずれもネットワークI/Oでブロックしうる（AuthorizeURLを除く）。
// 呼び出し側はDB接続を保持したまま待たないこと。
type Provider interface {
	// AuthorizeURL はIdPの認可URLを生成する。I/Oは行わない。
	AuthorizeURL(state string) string
	// ExchangeCode は認可コードをアクセストークンに交換する。
	ExchangeCode(ctx context.Context, code string) (string, error)
	// FetchUserInfo はアクセストークンでユーザー情報を取得する。
	FetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error)
}

// HandleCallbackの失敗を大別するためのセンチネルエラー。
// ハンドラー層でのステータス決定とメトリクスのラベル付けに使用する。
var (
	// ErrProvider はIdPとの通信（コード交換・ユーザー情報取得）の失敗を示す。
	ErrProvider = errors.New("auth: provider error")
	// ErrStore はセッション・ユーザーストアへのI/O失敗を示す。
	ErrStore = errors.New("auth: store error")
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service はログインフローのオーケストレーションを提供する。
// コード交換 → ユーザー情報取得 → ユーザーupsert → セッション発行の順で処理し、
// いずれかが失敗した場合はセッションを作成しない。
type Service struct {
	provider    Provider
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	provider Provider,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		provider:    provider,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// AuthorizeURL はIdPの認可URLを生成する。
func (s *Service) AuthorizeURL(state string) string {
	return s.provider.AuthorizeURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
// stateの検証はハンドラー側で完了している前提で、コード交換以降を担当する。
// 未登録ユーザーの場合はusersレコードを自動作成する。
// 同一emailの同時初回ログインはemail一意制約で直列化され、
// 制約違反を検知した側は再検索で既存ユーザーにフォールバックする。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	// 1. 認可コードをアクセストークンに交換
	accessToken, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange oauth code: %v", ErrProvider, err)
	}

	// 2. アクセストークンでユーザー情報を取得
	userInfo, err := s.provider.FetchUserInfo(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch user info: %v", ErrProvider, err)
	}

	// 3. emailでユーザーをupsert
	user, err := s.upsertUser(ctx, userInfo.Email)
	if err != nil {
		return nil, err
	}

	// 4. セッションを発行
	session, err := s.createSession(ctx, user.ID, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create session: %v", ErrStore, err)
	}

	return session, nil
}

// upsertUser はemailでユーザーを検索し、存在しなければ作成する。
// 作成時に一意制約違反が起きた場合（同時初回ログインの競合）は再検索で回復する。
func (s *Service) upsertUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to find user: %v", ErrStore, err)
	}
	if user != nil {
		slog.Info("existing user logged in",
			slog.Int64("user_id", user.ID),
		)
		return user, nil
	}

	user, err = s.userRepo.Create(ctx, email)
	if err == nil {
		slog.Info("new user created",
			slog.Int64("user_id", user.ID),
			slog.String("email", email),
		)
		return user, nil
	}
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, fmt.Errorf("%w: failed to create user: %v", ErrStore, err)
	}

	// 競合した場合は勝った側の行を再検索する
	user, err = s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to re-find user after conflict: %v", ErrStore, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user disappeared after duplicate email conflict: %s", ErrStore, email)
	}
	return user, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("session token is required")
	}

	if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// CurrentUser はセッショントークンから現在のユーザーを取得する。
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, fmt.Errorf("session token is required")
	}

	user, err := s.sessionRepo.FindUserByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	return user, nil
}

// createSession はセッションを作成し永続化する。
// セッショントークンはCSRF state用トークンとは独立に生成される。
func (s *Service) createSession(ctx context.Context, userID int64, accessToken string) (*model.Session, error) {
	token, err := GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &model.Session{
		UserID:      userID,
		Token:       token,
		AccessToken: accessToken,
		ExpiresAt:   time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt:   time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// GenerateToken は暗号的に安全な256ビットの不透明トークンを生成する。
// セッショントークンはCookieに入る唯一の資格情報であり、
// 推測不能であることが正当性要件となる。
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
