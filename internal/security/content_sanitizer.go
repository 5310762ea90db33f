// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はレビューの自由記述コメントをサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// ごく限られた整形タグのみを通過させる。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はコメントのサニタイズ機能のインターフェースを定義する。
// レビュー保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize はコメントをサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, strong, em）のみを通過させ、
	// script, iframe, a, imgタグおよびon*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// レビューコメントは短い自由記述であり、リンクや画像は不要なため、
// 段落・改行・強調のみを許可する最小ポリシーを構築する。
// script, iframe, style等は許可リストに含めないことで自動的に除去され、
// on*イベント属性はbluemondayのデフォルトで許可されない。
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em")

	return &contentSanitizer{
		policy: p,
	}
}

// Sanitize はコメントをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}
