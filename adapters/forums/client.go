// Package forums 是 Invision Community REST API 的 client
package forums

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
)

var ErrNotFound = errors.New("forum member not found")

// Group 是論壇的使用者群組
type Group struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	FormattedName string `json:"formattedName"`
}

// Member 是論壇的會員資料，只保留驗證流程需要的欄位
type Member struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	PrimaryGroup    Group   `json:"primaryGroup"`
	SecondaryGroups []Group `json:"secondaryGroups"`
}

// IDString 回傳字串形式的會員 ID
func (m *Member) IDString() string {
	return strconv.Itoa(m.ID)
}

type membersResponse struct {
	Page         int      `json:"page"`
	PerPage      int      `json:"perPage"`
	TotalResults int      `json:"totalResults"`
	TotalPages   int      `json:"totalPages"`
	Results      []Member `json:"results"`
}

// Client 以 API key 呼叫論壇的 REST API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	sanitizer  *bluemonday.Policy
}

type ClientOption func(*Client)

// WithHTTPClient 設置 http client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient 建立論壇 client，baseURL 例如 https://example.com/api
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		sanitizer:  bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindMember 以名稱搜尋會員。
// 搜尋是模糊比對，只接受名稱完全相同且唯一的會員。
func (c *Client) FindMember(ctx context.Context, name string) (*Member, error) {
	const op = "forums.FindMember"
	query := url.Values{}
	query.Set("name", name)

	var resp membersResponse
	if err := c.get(ctx, "/core/members?"+query.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("[%s] name=%s, err=%w", op, name, err)
	}

	matches := lo.Filter(resp.Results, func(m Member, _ int) bool {
		return m.Name == name
	})
	if len(matches) != 1 {
		return nil, ErrNotFound
	}
	return &matches[0], nil
}

// GetMember 以會員 ID 取得會員資料
func (c *Client) GetMember(ctx context.Context, id string) (*Member, error) {
	const op = "forums.GetMember"
	var member Member
	if err := c.get(ctx, "/core/members/"+url.PathEscape(id), &member); err != nil {
		return nil, fmt.Errorf("[%s] id=%s, err=%w", op, id, err)
	}
	return &member, nil
}

// MemberGroups 以會員 ID 取得目前的群組名稱
func (c *Client) MemberGroups(ctx context.Context, id string) ([]string, error) {
	member, err := c.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.GroupNames(member), nil
}

// GroupNames 回傳會員的主要群組與次要群組名稱 (主要群組在前)，
// 名稱中的 HTML 會被移除
func (c *Client) GroupNames(m *Member) []string {
	groups := append([]Group{m.PrimaryGroup}, m.SecondaryGroups...)
	names := lo.FilterMap(groups, func(g Group, _ int) (string, bool) {
		name := strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(g.Name)))
		return name, name != ""
	})
	return lo.Uniq(names)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("fail to create request, err=%w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fail to send request, err=%w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("request failed with status code=%d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("fail to decode response body, err=%w", err)
	}
	return nil
}
