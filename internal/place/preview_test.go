package place

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractTitle_TitleElement(t *testing.T) {
	body := []byte(`<html><head><title>  Taqueria El Güero  </title></head><body></body></html>`)

	if got := extractTitle(body); got != "Taqueria El Güero" {
		t.Errorf("extractTitle() = %q", got)
	}
}

func TestExtractTitle_PrefersOGTitle(t *testing.T) {
	body := []byte(`<html><head>
		<title>Plain Title</title>
		<meta property="og:title" content="OG Title">
	</head><body></body></html>`)

	if got := extractTitle(body); got != "OG Title" {
		t.Errorf("extractTitle() = %q, want OG Title", got)
	}
}

func TestExtractTitle_NoTitle_ReturnsEmpty(t *testing.T) {
	body := []byte(`<html><head></head><body><p>no title here</p></body></html>`)

	if got := extractTitle(body); got != "" {
		t.Errorf("extractTitle() = %q, want empty", got)
	}
}

func TestFetchTitle_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>Fetched Page</title></head></html>`))
	}))
	defer server.Close()

	f := NewPreviewFetcher(nil)

	if got := f.FetchTitle(context.Background(), server.URL); got != "Fetched Page" {
		t.Errorf("FetchTitle() = %q", got)
	}
}

func TestFetchTitle_NonHTMLContentType_ReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"not html"}`))
	}))
	defer server.Close()

	f := NewPreviewFetcher(nil)

	if got := f.FetchTitle(context.Background(), server.URL); got != "" {
		t.Errorf("FetchTitle() = %q, want empty", got)
	}
}

func TestFetchTitle_HTTPError_ReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewPreviewFetcher(nil)

	if got := f.FetchTitle(context.Background(), server.URL); got != "" {
		t.Errorf("FetchTitle() = %q, want empty", got)
	}
}

func TestFetchTitle_SSRFBlocked_ReturnsEmpty(t *testing.T) {
	guard := &mockSSRFValidator{
		validateURLFn: func(rawURL string) error {
			return errors.New("blocked IP address")
		},
	}
	f := NewPreviewFetcher(guard)

	if got := f.FetchTitle(context.Background(), "http://169.254.169.254/meta"); got != "" {
		t.Errorf("FetchTitle() = %q, want empty", got)
	}
}

func TestFetchTitle_EmptyURL_ReturnsEmpty(t *testing.T) {
	f := NewPreviewFetcher(nil)

	if got := f.FetchTitle(context.Background(), ""); got != "" {
		t.Errorf("FetchTitle() = %q, want empty", got)
	}
}

func TestIsHTMLContentType(t *testing.T) {
	cases := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"application/json", false},
		{"image/png", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := isHTMLContentType(tc.contentType); got != tc.want {
			t.Errorf("isHTMLContentType(%q) = %v, want %v", tc.contentType, got, tc.want)
		}
	}
}
