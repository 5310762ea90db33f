package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/resenia/internal/metrics"
	"github.com/hitoshi/resenia/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	StatusObserver    middleware.StatusObserver
	UserResolver      middleware.UserResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService  AuthService
	Cookie       CookieConfig
	PostLoginURL string

	// ドメイン
	PlaceService  PlaceService
	ReviewService ReviewService
	UserService   UserService

	// ヘルスチェック（インメモリストア構成ではnil可）
	DB Pinger

	// メトリクス（nil可）
	Metrics metrics.AuthMetricsCollector
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS
//
// 閲覧系（GET）はセッション任意、書き込み系はセッション必須 + レート制限。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusObserver))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.Metrics, deps.Cookie, deps.PostLoginURL)
	placeHandler := NewPlaceHandler(deps.PlaceService)
	reviewHandler := NewReviewHandler(deps.ReviewService)
	userHandler := NewUserHandler(deps.UserService, deps.Cookie)
	healthHandler := NewHealthHandler(deps.DB)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Health)

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.Login)
		r.Get("/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)

		// GET /auth/me - 認証必須
		r.With(middleware.NewSessionMiddleware(deps.UserResolver)).Get("/me", authHandler.Me)
	})

	// ルート直下のエイリアス。IdP側に登録済みのリダイレクトURIとの互換用。
	r.Get("/login", authHandler.Login)
	r.Get("/callback", authHandler.Callback)

	// --- 閲覧系ルート（セッション任意） ---
	// 未ログインでも閲覧できるが、ログイン済みならuser_idがログに載る。
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewOptionalSessionMiddleware(deps.UserResolver))

		r.Get("/api/places", placeHandler.List)
		r.Get("/api/places/{placeID}/reviews", reviewHandler.ListByPlace)
		r.Get("/api/reviews", reviewHandler.List)
	})

	// --- 書き込み系ルート（セッション必須 + レート制限） ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.UserResolver))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/api/places", placeHandler.Create)

		// POST /api/reviews - レビュー投稿（投稿専用レート制限を追加）
		r.With(deps.RateLimiter.ReviewRegistrationMiddleware()).Post("/api/reviews", reviewHandler.Create)

		r.Delete("/api/users/me", userHandler.Withdraw)
	})

	return r
}
