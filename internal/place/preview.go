// Package place は店舗登録・管理のドメインロジックを提供する。
package place

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxPreviewSize はプレビュー取得時に読み込むページの最大サイズ（512KB）。
// タイトルはドキュメント先頭に現れるため、これで十分。
const maxPreviewSize = 512 * 1024

// previewTimeout はプレビュー取得のタイムアウト。
const previewTimeout = 5 * time.Second

// SSRFValidator はSSRF検証のインターフェース。
// security.SSRFGuardServiceを抽象化してテスタビリティを向上させる。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration) *http.Client
}

// PreviewFetcherService は店舗URL先のページタイトル取得のインターフェース。
type PreviewFetcherService interface {
	// FetchTitle は指定URLのページタイトルを取得する。
	// og:titleを優先し、なければ<title>要素を使用する。
	// 取得失敗時は空文字列を返す（エラーは返さない、ベストエフォート）。
	FetchTitle(ctx context.Context, pageURL string) string
}

// PreviewFetcher はページタイトル取得機能の実装。
type PreviewFetcher struct {
	ssrfGuard SSRFValidator
}

// NewPreviewFetcher はPreviewFetcherの新しいインスタンスを生成する。
func NewPreviewFetcher(ssrfGuard SSRFValidator) *PreviewFetcher {
	return &PreviewFetcher{
		ssrfGuard: ssrfGuard,
	}
}

// FetchTitle は指定URLのページタイトルを取得する。
// 取得失敗時は空文字列を返す（要件: 取得失敗時はnullとして保存）。
func (f *PreviewFetcher) FetchTitle(ctx context.Context, pageURL string) string {
	if pageURL == "" {
		return ""
	}

	// SSRF検証
	if f.ssrfGuard != nil {
		if err := f.ssrfGuard.ValidateURL(pageURL); err != nil {
			slog.Warn("プレビュー取得: SSRFブロック", "url", pageURL, "error", err)
			return ""
		}
	}

	client := f.getHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		slog.Warn("プレビュー取得: リクエスト作成失敗", "url", pageURL, "error", err)
		return ""
	}
	req.Header.Set("User-Agent", "Resenia/1.0 Review Service")

	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("プレビュー取得: HTTPリクエスト失敗", "url", pageURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("プレビュー取得: HTTPステータス異常", "url", pageURL, "status", resp.StatusCode)
		return ""
	}

	// HTML以外のContent-Typeはパースしない
	if !isHTMLContentType(resp.Header.Get("Content-Type")) {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewSize))
	if err != nil {
		slog.Warn("プレビュー取得: レスポンス読み取り失敗", "url", pageURL, "error", err)
		return ""
	}

	return extractTitle(body)
}

// getHTTPClient はプレビュー取得用のHTTPクライアントを返す。
func (f *PreviewFetcher) getHTTPClient() *http.Client {
	if f.ssrfGuard != nil {
		return f.ssrfGuard.NewSafeClient(previewTimeout)
	}
	return &http.Client{Timeout: previewTimeout}
}

// isHTMLContentType はContent-TypeがHTMLかどうかを判定する。
func isHTMLContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	}
	mediaType = strings.ToLower(mediaType)
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// extractTitle はHTMLからページタイトルを抽出する。
// og:titleメタタグを優先し、なければ<title>要素のテキストを返す。
// どちらも見つからない場合は空文字列を返す。
func extractTitle(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var title, ogTitle string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				var property, content string
				for _, attr := range n.Attr {
					switch strings.ToLower(attr.Key) {
					case "property":
						property = strings.ToLower(attr.Val)
					case "content":
						content = attr.Val
					}
				}
				if property == "og:title" && ogTitle == "" {
					ogTitle = strings.TrimSpace(content)
				}
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if ogTitle != "" {
		return ogTitle
	}
	return title
}

// compile-time interface check
var _ PreviewFetcherService = (*PreviewFetcher)(nil)
