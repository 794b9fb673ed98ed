package forums

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const membersFixture = `{
  "page": 1, "perPage": 25, "totalResults": 2, "totalPages": 1,
  "results": [
    {"id": 11, "name": "Alphabet", "email": "other@example.com",
     "primaryGroup": {"id": 3, "name": "Members", "formattedName": "Members"},
     "secondaryGroups": []},
    {"id": 7, "name": "Alpha", "email": "alpha@example.com",
     "primaryGroup": {"id": 3, "name": "Members", "formattedName": "<span>Members</span>"},
     "secondaryGroups": [
       {"id": 8, "name": "Regulars", "formattedName": "Regulars"},
       {"id": 9, "name": "<b>Guests</b>", "formattedName": "Guests"},
       {"id": 3, "name": "Members", "formattedName": "Members"}
     ]}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/api/", "key", WithHTTPClient(server.Client()))
}

func TestClient_FindMember(t *testing.T) {
	var gotUser, gotPath, gotName string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUser, _, _ = r.BasicAuth()
		gotPath = r.URL.Path
		gotName = r.URL.Query().Get("name")
		switch gotName {
		case "Alpha":
			_, _ = w.Write([]byte(membersFixture))
		case "Single":
			_, _ = w.Write([]byte(`{"results":[{"id":5,"name":"Single","email":"s@example.com","primaryGroup":{"id":3,"name":"Members"}}]}`))
		case "single":
			// 唯一的結果只是模糊比對
			_, _ = w.Write([]byte(`{"results":[{"id":6,"name":"Singleton","email":"t@example.com","primaryGroup":{"id":3,"name":"Members"}}]}`))
		case "Twin":
			_, _ = w.Write([]byte(`{"results":[{"id":12,"name":"Twin"},{"id":13,"name":"Twin"}]}`))
		case "Alph":
			_, _ = w.Write([]byte(membersFixture))
		default:
			_, _ = w.Write([]byte(`{"results":[]}`))
		}
	})
	ctx := context.Background()

	member, err := client.FindMember(ctx, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, "key", gotUser)
	assert.Equal(t, "/api/core/members", gotPath)
	assert.Equal(t, "Alpha", gotName)
	// 多筆結果時採用名稱完全相同的會員
	assert.Equal(t, 7, member.ID)
	assert.Equal(t, "7", member.IDString())
	assert.Equal(t, "alpha@example.com", member.Email)

	member, err = client.FindMember(ctx, "Single")
	require.NoError(t, err)
	assert.Equal(t, 5, member.ID)

	// 只有一筆結果但名稱不同
	_, err = client.FindMember(ctx, "single")
	assert.ErrorIs(t, err, ErrNotFound)

	// 名稱相同的會員不只一位
	_, err = client.FindMember(ctx, "Twin")
	assert.ErrorIs(t, err, ErrNotFound)

	// 多筆結果但沒有完全相同的名稱
	_, err = client.FindMember(ctx, "Alph")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.FindMember(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_GetMember(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/core/members/7":
			_, _ = w.Write([]byte(`{"id":7,"name":"Alpha","primaryGroup":{"id":3,"name":"Members"},"secondaryGroups":[{"id":8,"name":"Regulars"}]}`))
		case "/api/core/members/500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	member, err := client.GetMember(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"Members", "Regulars"}, client.GroupNames(member))

	groups, err := client.MemberGroups(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"Members", "Regulars"}, groups)

	_, err = client.MemberGroups(ctx, "8")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetMember(ctx, "8")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetMember(ctx, "500")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_GroupNames(t *testing.T) {
	client := NewClient("http://unused", "key")
	member := &Member{
		PrimaryGroup: Group{Name: "Members"},
		SecondaryGroups: []Group{
			{Name: "<b>Regulars</b>"},
			{Name: "Members"},
			{Name: "   "},
			{Name: "Game Server Officer"},
			{Name: "R&amp;D"},
		},
	}
	// 主要群組在前、去除 HTML 與重複
	assert.Equal(t, []string{"Members", "Regulars", "Game Server Officer", "R&D"}, client.GroupNames(member))
}
