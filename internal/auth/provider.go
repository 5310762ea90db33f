package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultProviderTimeout はIdPへのネットワーク呼び出しのタイムアウト。
// 認可コード交換・ユーザー情報取得の両方に適用される。
const defaultProviderTimeout = 8 * time.Second

// ProviderConfig は外部IdP（OAuth2認可コードフロー）の設定。
// Auth0互換のエンドポイント構成（/authorize, /oauth/token, /userinfo）を想定する。
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// テスト用にオーバーライド可能なURL
	AuthURL     string
	TokenURL    string
	UserInfoURL string

	// Timeoutが0の場合はdefaultProviderTimeoutを使用する。
	Timeout time.Duration
}

// OIDCProvider は外部IdPに対する認可コード交換とユーザー情報取得を提供する。
type OIDCProvider struct {
	config ProviderConfig
	client *http.Client
}

// NewOIDCProvider はOIDCProviderを生成する。
// issuerURLからAuth0互換のエンドポイントURLを導出する。
// config側で個別URLが指定されている場合はそちらを優先する。
func NewOIDCProvider(issuerURL string, config ProviderConfig) *OIDCProvider {
	issuer := strings.TrimSuffix(issuerURL, "/")
	if config.AuthURL == "" {
		config.AuthURL = issuer + "/authorize"
	}
	if config.TokenURL == "" {
		config.TokenURL = issuer + "/oauth/token"
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = issuer + "/userinfo"
	}
	if config.Timeout == 0 {
		config.Timeout = defaultProviderTimeout
	}
	return &OIDCProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// AuthorizeURL はIdPの認可エンドポイントURLを構築する。
// スコープはopenid, profile, emailを要求し、stateにCSRFトークンを載せる。
// I/Oは行わない。
func (p *OIDCProvider) AuthorizeURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.RedirectURL},
		"response_type": {"code"},
		"scope":         {"openid profile email"},
		"state":         {state},
	}
	return p.config.AuthURL + "?" + params.Encode()
}

// tokenResponse はトークンエンドポイントのレスポンス。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// UserInfo はIdPのuserinfoエンドポイントから取得したユーザー情報。
type UserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

// ExchangeCode は認可コードをアクセストークンに交換する。
// ネットワーク失敗・非2xx・不正なペイロードはエラーとして返す。
func (p *OIDCProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"redirect_uri":  {p.config.RedirectURL},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}

	return tokenResp.AccessToken, nil
}

// FetchUserInfo はアクセストークンでIdPのユーザー情報を取得する。
// ネットワーク失敗・非2xx・email欠落はエラーとして返す。
func (p *OIDCProvider) FetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user info response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var userInfo UserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info response: %w", err)
	}

	if userInfo.Email == "" {
		return nil, fmt.Errorf("empty email in user info response")
	}

	return &userInfo, nil
}

// compile-time interface check
var _ Provider = (*OIDCProvider)(nil)
