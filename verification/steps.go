package verification

import (
	"context"
	"errors"
	"strconv"

	"uoauth/adapters/discord"
	"uoauth/adapters/forums"
	"uoauth/adapters/session"
	"uoauth/adapters/teamspeak"
)

// Status 是單一步驟的結果
type Status string

const (
	StatusSuccess Status = "success"
	// StatusFailed 表示找不到對應的帳號
	StatusFailed Status = "failed"
	// StatusError 表示查詢時發生錯誤 (網路、逾時、上游 5xx)
	StatusError Status = "error"
)

// ParseStatus 將查詢參數轉為 Status，未知的值視為 error
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusSuccess, StatusFailed:
		return Status(s)
	}
	return StatusError
}

// StepResult 是一個步驟查詢身份的結果
type StepResult struct {
	Status   Status
	Identity session.Identity
	// Groups 是論壇步驟取得的群組名稱
	Groups []string
	Err    error
}

func Success(identity session.Identity, groups ...string) StepResult {
	return StepResult{Status: StatusSuccess, Identity: identity, Groups: groups}
}

func Failed(err error) StepResult {
	return StepResult{Status: StatusFailed, Err: err}
}

func Errored(err error) StepResult {
	return StepResult{Status: StatusError, Err: err}
}

// classify 依錯誤類型分為 failed 與 error
func classify(err error, notFound error) StepResult {
	if errors.Is(err, notFound) {
		return Failed(err)
	}
	return Errored(err)
}

// DiscordResult 將 Discord 使用者轉為步驟結果
func DiscordResult(user *discord.User, err error) StepResult {
	if err != nil {
		return Errored(err)
	}
	return Success(session.Identity{
		Username:            user.Username,
		PrimaryAccountID:    user.ID,
		PrimaryAccountEmail: user.Email,
	})
}

// IForums 定義了論壇步驟需要的查詢
type IForums interface {
	FindMember(ctx context.Context, name string) (*forums.Member, error)
	GroupNames(m *forums.Member) []string
}

// LookupForums 以 Discord 使用者名稱尋找論壇帳號
func LookupForums(ctx context.Context, client IForums, username string) StepResult {
	member, err := client.FindMember(ctx, username)
	if err != nil {
		return classify(err, forums.ErrNotFound)
	}
	return Success(session.Identity{
		SecondaryAccountID:    member.IDString(),
		SecondaryAccountEmail: member.Email,
	}, client.GroupNames(member)...)
}

// ITeamSpeak 定義了 TeamSpeak 步驟需要的查詢
type ITeamSpeak interface {
	FindClient(ctx context.Context, nickname string) (*teamspeak.ClientInfo, error)
}

// LookupTeamSpeak 以使用者名稱尋找目前連線中的 TeamSpeak 使用者
func LookupTeamSpeak(ctx context.Context, client ITeamSpeak, username string) StepResult {
	info, err := client.FindClient(ctx, username)
	if err != nil {
		return classify(err, teamspeak.ErrNotFound)
	}
	return Success(session.Identity{
		TertiaryAccountID:  info.UniqueIdentifier,
		TertiaryDatabaseID: strconv.FormatUint(info.DatabaseID, 10),
		TertiaryClientIP:   info.IP,
	})
}
