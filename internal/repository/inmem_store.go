package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/resenia/internal/model"
)

// InMemoryStore はプロセス内メモリにユーザーとセッションを保持するストア。
// UserRepositoryとSessionRepositoryの両方を実装し、
// SESSION_STORE=memory設定時にPostgres実装の代わりに使用される。
// 再起動で全データが失われるため、開発・テスト用途を想定している。
type InMemoryStore struct {
	mu           sync.RWMutex
	nextUserID   int64
	nextSessID   int64
	usersByID    map[int64]model.User
	usersByEmail map[string]int64
	sessions     map[string]model.Session // session_token -> Session
}

// NewInMemoryStore はInMemoryStoreを生成する。
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		usersByID:    make(map[int64]model.User),
		usersByEmail: make(map[string]int64),
		sessions:     make(map[string]model.Session),
	}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (s *InMemoryStore) FindByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByID[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// FindByEmail はemail完全一致でユーザーを検索する。見つからない場合はnilを返す。
func (s *InMemoryStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, nil
	}
	user := s.usersByID[id]
	return &user, nil
}

// Create は新規ユーザーを作成する。
// emailが既に存在する場合はErrDuplicateEmailを返す。
// mapへの挿入とemail索引の更新が同一ロック内で行われるため、
// Postgres実装の一意制約と同じ直列化が保証される。
func (s *InMemoryStore) Create(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[email]; exists {
		return nil, ErrDuplicateEmail
	}

	s.nextUserID++
	user := model.User{
		ID:        s.nextUserID,
		Email:     email,
		CreatedAt: time.Now(),
	}
	s.usersByID[user.ID] = user
	s.usersByEmail[email] = user.ID

	return &user, nil
}

// DeleteByID は指定IDのユーザーと、そのユーザーの全セッションを削除する。
func (s *InMemoryStore) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByID[id]
	if !ok {
		return nil
	}
	delete(s.usersByID, id)
	delete(s.usersByEmail, user.Email)
	for token, sess := range s.sessions {
		if sess.UserID == id {
			delete(s.sessions, token)
		}
	}
	return nil
}

// CreateSession はセッションを作成し、採番したIDをsessionに埋める。
func (s *InMemoryStore) CreateSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSessID++
	session.ID = s.nextSessID
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	s.sessions[session.Token] = *session
	return nil
}

// FindByToken は指定トークンのセッションを取得する。
// 見つからない、または期限切れの場合はnilを返す。
func (s *InMemoryStore) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok || sess.Expired(time.Now()) {
		return nil, nil
	}
	return &sess, nil
}

// FindUserByToken はセッショントークンからユーザーを解決する。
// トークンが未知・期限切れの場合は(nil, nil)を返す。
func (s *InMemoryStore) FindUserByToken(ctx context.Context, token string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok || sess.Expired(time.Now()) {
		return nil, nil
	}
	user, ok := s.usersByID[sess.UserID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// DeleteByToken は指定トークンのセッションを削除する。
func (s *InMemoryStore) DeleteByToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// DeleteByUserID は指定ユーザーの全セッションを削除する。
func (s *InMemoryStore) DeleteByUserID(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, token)
		}
	}
	return nil
}

// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
func (s *InMemoryStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var deleted int64
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

// compile-time interface check
var _ UserRepository = (*InMemoryStore)(nil)

// sessionStoreAdapter はInMemoryStoreをSessionRepositoryに適合させる。
// Create名がUserRepository側と衝突するため、メソッド名の読み替えのみ行う。
type sessionStoreAdapter struct {
	store *InMemoryStore
}

// Sessions はSessionRepositoryとしてのビューを返す。
func (s *InMemoryStore) Sessions() SessionRepository {
	return &sessionStoreAdapter{store: s}
}

func (a *sessionStoreAdapter) Create(ctx context.Context, session *model.Session) error {
	return a.store.CreateSession(ctx, session)
}

func (a *sessionStoreAdapter) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	return a.store.FindByToken(ctx, token)
}

func (a *sessionStoreAdapter) FindUserByToken(ctx context.Context, token string) (*model.User, error) {
	return a.store.FindUserByToken(ctx, token)
}

func (a *sessionStoreAdapter) DeleteByToken(ctx context.Context, token string) error {
	return a.store.DeleteByToken(ctx, token)
}

func (a *sessionStoreAdapter) DeleteByUserID(ctx context.Context, userID int64) error {
	return a.store.DeleteByUserID(ctx, userID)
}

func (a *sessionStoreAdapter) DeleteExpired(ctx context.Context) (int64, error) {
	return a.store.DeleteExpired(ctx)
}

// compile-time interface check
var _ SessionRepository = (*sessionStoreAdapter)(nil)
