// Package config は環境変数からのアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// SessionStoreKind はセッションの永続化方式を表す。
type SessionStoreKind string

const (
	// SessionStorePostgres はPostgreSQLにセッションを永続化する。
	SessionStorePostgres SessionStoreKind = "postgres"
	// SessionStoreMemory はプロセス内メモリにセッションを保持する。
	// 再起動で全セッションが失われるため、開発・テスト用途を想定している。
	SessionStoreMemory SessionStoreKind = "memory"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// OAuth
	OAuthClientID     string
	OAuthClientSecret string
	OAuthIssuerURL    string
	OAuthRedirectURL  string
	ProviderTimeout   time.Duration

	// Session
	SessionMaxAge int // セッション有効期間（秒）
	SessionStore  SessionStoreKind

	// Rate Limit（req/min/user）
	RateLimitGeneral   int
	RateLimitReviewReg int

	// Server
	ServerPort  string
	MetricsPort string
	BaseURL     string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.OAuthClientID = os.Getenv("OAUTH_CLIENT_ID")
	if cfg.OAuthClientID == "" {
		missing = append(missing, "OAUTH_CLIENT_ID")
	}

	cfg.OAuthClientSecret = os.Getenv("OAUTH_CLIENT_SECRET")
	if cfg.OAuthClientSecret == "" {
		missing = append(missing, "OAUTH_CLIENT_SECRET")
	}

	cfg.OAuthIssuerURL = os.Getenv("OAUTH_ISSUER_URL")
	if cfg.OAuthIssuerURL == "" {
		missing = append(missing, "OAUTH_ISSUER_URL")
	}

	cfg.OAuthRedirectURL = os.Getenv("OAUTH_REDIRECT_URL")
	if cfg.OAuthRedirectURL == "" {
		missing = append(missing, "OAUTH_REDIRECT_URL")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.ProviderTimeout = getEnvDuration("PROVIDER_TIMEOUT", 8*time.Second)
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitReviewReg = getEnvInt("RATE_LIMIT_REVIEW_REG", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.MetricsPort = getEnvString("METRICS_PORT", "9090")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	store, err := parseSessionStore(getEnvString("SESSION_STORE", string(SessionStorePostgres)))
	if err != nil {
		return nil, err
	}
	cfg.SessionStore = store

	return cfg, nil
}

// parseSessionStore はSESSION_STOREの値を検証する。
// 不正な値は起動時エラーとして扱う（サイレントにデフォルトへ倒さない）。
func parseSessionStore(v string) (SessionStoreKind, error) {
	switch SessionStoreKind(strings.ToLower(v)) {
	case SessionStorePostgres:
		return SessionStorePostgres, nil
	case SessionStoreMemory:
		return SessionStoreMemory, nil
	default:
		return "", fmt.Errorf("invalid SESSION_STORE: %q (allowed: postgres, memory)", v)
	}
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
