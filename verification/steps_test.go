package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"uoauth/adapters/discord"
	"uoauth/adapters/forums"
	"uoauth/adapters/teamspeak"
)

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusSuccess, ParseStatus("success"))
	assert.Equal(t, StatusFailed, ParseStatus("failed"))
	assert.Equal(t, StatusError, ParseStatus("error"))
	assert.Equal(t, StatusError, ParseStatus(""))
	assert.Equal(t, StatusError, ParseStatus("SUCCESS"))
}

func TestDiscordResult(t *testing.T) {
	res := DiscordResult(&discord.User{ID: "100", Username: "Alpha", Email: "alpha@discord.test"}, nil)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "Alpha", res.Identity.Username)
	assert.Equal(t, "100", res.Identity.PrimaryAccountID)
	assert.Equal(t, "alpha@discord.test", res.Identity.PrimaryAccountEmail)

	res = DiscordResult(nil, errors.New("boom"))
	assert.Equal(t, StatusError, res.Status)
	assert.EqualError(t, res.Err, "boom")
}

type stubForums struct {
	member *forums.Member
	err    error
}

func (s stubForums) FindMember(ctx context.Context, name string) (*forums.Member, error) {
	return s.member, s.err
}

func (s stubForums) GroupNames(m *forums.Member) []string {
	return []string{m.PrimaryGroup.Name}
}

func TestLookupForums(t *testing.T) {
	ctx := context.Background()
	member := &forums.Member{ID: 7, Name: "Alpha", Email: "alpha@forums.test", PrimaryGroup: forums.Group{Name: "Members"}}

	res := LookupForums(ctx, stubForums{member: member}, "Alpha")
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "7", res.Identity.SecondaryAccountID)
	assert.Equal(t, "alpha@forums.test", res.Identity.SecondaryAccountEmail)
	assert.Equal(t, []string{"Members"}, res.Groups)

	res = LookupForums(ctx, stubForums{err: forums.ErrNotFound}, "Alpha")
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, forums.ErrNotFound)

	res = LookupForums(ctx, stubForums{err: context.DeadlineExceeded}, "Alpha")
	assert.Equal(t, StatusError, res.Status)
}

type stubTeamSpeak struct {
	info *teamspeak.ClientInfo
	err  error
}

func (s stubTeamSpeak) FindClient(ctx context.Context, nickname string) (*teamspeak.ClientInfo, error) {
	return s.info, s.err
}

func TestLookupTeamSpeak(t *testing.T) {
	ctx := context.Background()
	info := &teamspeak.ClientInfo{ClientID: "5", Nickname: "Alpha", UniqueIdentifier: "uid=", DatabaseID: 42, IP: "10.0.0.1"}

	res := LookupTeamSpeak(ctx, stubTeamSpeak{info: info}, "Alpha")
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "uid=", res.Identity.TertiaryAccountID)
	assert.Equal(t, "42", res.Identity.TertiaryDatabaseID)
	assert.Equal(t, "10.0.0.1", res.Identity.TertiaryClientIP)

	res = LookupTeamSpeak(ctx, stubTeamSpeak{err: teamspeak.ErrNotFound}, "Alpha")
	assert.Equal(t, StatusFailed, res.Status)

	res = LookupTeamSpeak(ctx, stubTeamSpeak{err: errors.New("connection refused")}, "Alpha")
	assert.Equal(t, StatusError, res.Status)
}
