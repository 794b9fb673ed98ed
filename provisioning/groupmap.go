// Package provisioning 將論壇群組轉換成 Discord 角色與 TeamSpeak 伺服器群組並套用
package provisioning

import (
	"github.com/samber/lo"
)

// TeamSpeakGroup 是 TeamSpeak 伺服器群組 ID
type TeamSpeakGroup uint64

const (
	TeamSpeakPublicRelationsOfficer TeamSpeakGroup = 10
	TeamSpeakGameServerOfficer      TeamSpeakGroup = 11
	TeamSpeakMissionMakingOfficer   TeamSpeakGroup = 12
	TeamSpeakWebServerOfficer       TeamSpeakGroup = 13
	TeamSpeakTrainingOfficer        TeamSpeakGroup = 14
	TeamSpeakGameModerator          TeamSpeakGroup = 19
	TeamSpeakForumModerator         TeamSpeakGroup = 22
	TeamSpeakUOTCInstructor         TeamSpeakGroup = 23
	TeamSpeakDonorOfficer           TeamSpeakGroup = 25
	TeamSpeakDonorRegular           TeamSpeakGroup = 26
	TeamSpeakDonorMember            TeamSpeakGroup = 27
	TeamSpeakOfficer                TeamSpeakGroup = 88
	TeamSpeakTeamSpeakOfficer       TeamSpeakGroup = 85
	TeamSpeakRegular                TeamSpeakGroup = 86
	TeamSpeakMember                 TeamSpeakGroup = 90
	TeamSpeakAirForcesOfficer       TeamSpeakGroup = 108
)

// Target 是一個論壇群組在各平台對應的角色，零值代表不轉移到該平台
type Target struct {
	Discord   string
	TeamSpeak TeamSpeakGroup
}

func (t Target) transfers() bool {
	return t.Discord != "" || t.TeamSpeak != 0
}

// GroupMap 是論壇群組名稱對應平台角色的表
type GroupMap map[string]Target

// DefaultGroupMap 回傳社群預設的群組對應
func DefaultGroupMap() GroupMap {
	return GroupMap{
		"Members":                  {Discord: "Members", TeamSpeak: TeamSpeakMember},
		"Donating Members":         {Discord: "Donors", TeamSpeak: TeamSpeakDonorMember},
		"Donating Officers":        {TeamSpeak: TeamSpeakDonorOfficer},
		"Donating Regulars":        {TeamSpeak: TeamSpeakDonorRegular},
		"Game Server Officer":      {Discord: "GSO Officers", TeamSpeak: TeamSpeakGameServerOfficer},
		"Web Server Officer":       {Discord: "WSO Officers", TeamSpeak: TeamSpeakWebServerOfficer},
		"Public Relations Officer": {Discord: "PSO Officers", TeamSpeak: TeamSpeakPublicRelationsOfficer},
		"UOAF Officer":             {Discord: "AFO Officers", TeamSpeak: TeamSpeakAirForcesOfficer},
		"Regulars":                 {Discord: "Regulars", TeamSpeak: TeamSpeakRegular},
		"MMO - DELEGATES":          {Discord: "MMO Delegates"},
		"UOTC Delegate":            {Discord: "UOTC Delegates"},
		"UOTC Instructor":          {Discord: "UOTC D (Instructor)", TeamSpeak: TeamSpeakUOTCInstructor},
	}
}

// ComputeTransfer 將論壇群組分為會轉移與不會轉移兩組，保留輸入順序
func (m GroupMap) ComputeTransfer(groups []string) (will []string, wont []string) {
	will, wont = lo.FilterReject(lo.Uniq(groups), func(group string, _ int) bool {
		return m[group].transfers()
	})
	return will, wont
}

// DiscordRoles 回傳群組對應的 Discord 角色 (去除重複)
func (m GroupMap) DiscordRoles(groups []string) []string {
	return lo.Uniq(lo.FilterMap(groups, func(group string, _ int) (string, bool) {
		role := m[group].Discord
		return role, role != ""
	}))
}

// TeamSpeakGroups 回傳群組對應的 TeamSpeak 伺服器群組 ID (去除重複)
func (m GroupMap) TeamSpeakGroups(groups []string) []uint64 {
	return lo.Uniq(lo.FilterMap(groups, func(group string, _ int) (uint64, bool) {
		id := m[group].TeamSpeak
		return uint64(id), id != 0
	}))
}
