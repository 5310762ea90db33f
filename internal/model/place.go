package model

import "time"

// Place はレビュー対象の店舗を表す。
type Place struct {
	ID      int64
	Name    string
	Address string
	MapsURL string
	// PreviewTitle はMapsURL先のページから取得したタイトル。
	// 取得失敗時は空文字列のまま保存される（ベストエフォート）。
	PreviewTitle string
	CreatedAt    time.Time
}

// Review は店舗に対する給与レビューを表す。
// user_idは必ずセッションから解決されたユーザーのIDであり、
// リクエストボディから受け取ることはない。
type Review struct {
	ID             int64
	PlaceID        int64
	UserID         int64
	WeeklySalary   float64
	WeeklyTips     *float64
	ShiftDaysCount int
	ShiftDuration  int
	SocialSecurity *bool
	Comment        string
	CreatedAt      time.Time
}

// ReviewWithPlace はレビューと店舗情報を結合した読み取り用の構造体。
type ReviewWithPlace struct {
	Review
	PlaceName string
}
