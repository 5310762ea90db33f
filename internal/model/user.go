// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// 外部IdPのOAuthコールバックで初回ログイン時に作成され、emailで一意に識別される。
// このサブシステムの範囲では作成後に変更されることはない。
type User struct {
	ID        int64
	Email     string
	CreatedAt time.Time
}

// Session はユーザーのログインセッションを表す。
// TokenがCookieに格納される資格情報で、sessionsテーブルの検索キーとなる。
// AccessTokenはIdPが発行したbearerトークンで、下流のAPI呼び出し用に保持する
// （このサービス自身は検証・リフレッシュしない）。
type Session struct {
	ID          int64
	UserID      int64
	Token       string
	AccessToken string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Expired はセッションがnow時点で期限切れかどうかを返す。
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
