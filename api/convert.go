package api

import (
	"github.com/samber/lo"

	"uoauth/api/openapi"
	"uoauth/models"
	"uoauth/verification"
)

// newUser 轉換為對外回傳的驗證紀錄
func newUser(record *models.AuthenticationRecord) openapi.User {
	return openapi.User{
		Username:            record.Username,
		Email:               record.Email,
		ForumsId:            record.SecondaryAccountID,
		DiscordId:           record.PrimaryAccountID,
		TeamspeakId:         record.TertiaryAccountID,
		TeamspeakDatabaseId: int64(record.TertiaryDatabaseID),
		Ip:                  record.TertiaryClientIP,
		CreatedAt:           record.CreatedAt,
	}
}

func newProgress(p verification.Progress) openapi.Progress {
	out := openapi.Progress{
		State: openapi.ProgressState(p.State),
		Completed: lo.Map(p.Completed, func(provider verification.Provider, _ int) openapi.Provider {
			return openapi.Provider(provider)
		}),
	}
	if p.Step != verification.ProviderNone {
		out.Step = lo.ToPtr(openapi.Provider(p.Step))
	}
	if p.Failed != verification.ProviderNone {
		out.Failed = lo.ToPtr(openapi.Provider(p.Failed))
	}
	if p.Username != "" {
		out.Username = lo.ToPtr(p.Username)
	}
	return out
}
