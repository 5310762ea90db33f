// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, review, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeStateMismatch  = "OAUTH_STATE_MISMATCH"
	ErrCodeProviderFailed = "PROVIDER_FAILED"
	ErrCodeInvalidURL     = "INVALID_URL"
	ErrCodeSSRFBlocked    = "SSRF_BLOCKED"
	ErrCodeInvalidReview  = "INVALID_REVIEW"
	ErrCodeInvalidPlace   = "INVALID_PLACE"
	ErrCodePlaceNotFound  = "PLACE_NOT_FOUND"
	ErrCodeUserNotFound   = "USER_NOT_FOUND"
)

// NewStateMismatchError はOAuth stateの不一致エラーを生成する。
func NewStateMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodeStateMismatch,
		Message:  "認証リクエストの検証に失敗しました。",
		Category: "auth",
		Action:   "ログインを最初からやり直してください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを入力してください。",
	}
}

// NewInvalidReviewError は無効なレビュー入力エラーを生成する。
func NewInvalidReviewError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidReview,
		Message:  fmt.Sprintf("無効なレビューです: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewInvalidPlaceError は無効な店舗入力エラーを生成する。
func NewInvalidPlaceError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPlace,
		Message:  fmt.Sprintf("無効な店舗情報です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewPlaceNotFoundError は店舗未検出エラーを生成する。
func NewPlaceNotFoundError(placeID int64) *APIError {
	return &APIError{
		Code:     ErrCodePlaceNotFound,
		Message:  fmt.Sprintf("指定された店舗が見つかりません: %d", placeID),
		Category: "review",
		Action:   "店舗IDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
