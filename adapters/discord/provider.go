package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

var (
	ErrStateMismatch = errors.New("state mismatch")
	ErrMissingCode   = errors.New("authorization code is missing")
)

// Endpoint 是 Discord 的 OAuth2 端點
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/api/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

const DefaultAPIBase = "https://discord.com/api"

// Provider 是 Discord 的 OAuth2 client，只用來確認使用者的 Discord 帳號
type Provider struct {
	config     oauth2.Config
	apiBase    string
	httpClient *http.Client
}

type providerOptions struct {
	endpoint   oauth2.Endpoint
	apiBase    string
	scopes     []string
	httpClient *http.Client
}

type ProviderOption func(*providerOptions)

// WithEndpoint 替換 OAuth2 端點 (主要用於測試)
func WithEndpoint(endpoint oauth2.Endpoint) ProviderOption {
	return func(o *providerOptions) {
		o.endpoint = endpoint
	}
}

// WithAPIBase 替換 REST API 的位址 (主要用於測試)
func WithAPIBase(apiBase string) ProviderOption {
	return func(o *providerOptions) {
		o.apiBase = strings.TrimSuffix(apiBase, "/")
	}
}

// WithScopes 設置授權範圍，預設只有 identify
func WithScopes(scopes ...string) ProviderOption {
	return func(o *providerOptions) {
		o.scopes = scopes
	}
}

// WithHTTPClient 設置呼叫 Discord 使用的 http client
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(o *providerOptions) {
		o.httpClient = client
	}
}

// NewProvider
func NewProvider(clientID, clientSecret, redirectURL string, opts ...ProviderOption) *Provider {
	options := providerOptions{
		endpoint:   Endpoint,
		apiBase:    DefaultAPIBase,
		scopes:     []string{"identify"},
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Provider{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     options.endpoint,
			RedirectURL:  redirectURL,
			Scopes:       options.scopes,
		},
		apiBase:    options.apiBase,
		httpClient: options.httpClient,
	}
}

// AuthURL 產生導向 Discord 授權頁面的網址
func (p *Provider) AuthURL(state string, opts ...oauth2.AuthCodeOption) string {
	return p.config.AuthCodeURL(state, opts...)
}

// Exchange 驗證 state 後以 code 換取 access token
func (p *Provider) Exchange(ctx context.Context, verifier *ExchangeVerifier, code, state string) (*oauth2.Token, error) {
	const op = "Exchange"
	if !verifier.VerifyState(state) {
		return nil, ErrStateMismatch
	}
	if code == "" {
		return nil, ErrMissingCode
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("[%s] Failed to exchange token, err=%w", op, err)
	}
	return token, nil
}

// FetchUser 以 access token 取得目前登入的使用者 (GET /users/@me)
func (p *Provider) FetchUser(ctx context.Context, token *oauth2.Token) (*User, error) {
	const op = "FetchUser"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create request, err=%w", op, err)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to send request, err=%w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("[%s] Request failed with status code=%d", op, resp.StatusCode)
	}

	user := new(User)
	if err := json.NewDecoder(resp.Body).Decode(user); err != nil {
		return nil, fmt.Errorf("[%s] Fail to decode response body, err=%w", op, err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("[%s] Response has no user id", op)
	}
	return user, nil
}
