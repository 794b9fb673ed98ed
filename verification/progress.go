// Package verification 控制 discord → forums → teamspeak 三個驗證步驟的流程
package verification

import (
	"uoauth/adapters/session"
)

// Provider 是驗證步驟的身份來源
type Provider string

const (
	ProviderDiscord   Provider = "discord"
	ProviderForums    Provider = "forums"
	ProviderTeamSpeak Provider = "teamspeak"
	// ProviderNone 代表沒有下一個步驟
	ProviderNone Provider = ""
)

var successors = map[Provider]Provider{
	ProviderDiscord:   ProviderForums,
	ProviderForums:    ProviderTeamSpeak,
	ProviderTeamSpeak: ProviderNone,
}

// ParseProvider 將路徑參數轉為 Provider
func ParseProvider(s string) (Provider, bool) {
	p := Provider(s)
	_, ok := successors[p]
	return p, ok
}

// Next 回傳 p 成功後的下一個步驟
func Next(p Provider) Provider {
	return successors[p]
}

// State 是單次驗證流程的狀態
type State string

const (
	StateUnstarted State = "unstarted"
	StatePending   State = "pending"
	StateComplete  State = "complete"
)

// Progress 是從 session 推導出的目前進度，Step 為下一個要執行的步驟。
// Failed 不為空時表示 Step 最近一次的結果是失敗或錯誤。
type Progress struct {
	State     State      `json:"state"`
	Step      Provider   `json:"step,omitempty"`
	Completed []Provider `json:"completed"`
	Username  string     `json:"username,omitempty"`
	Failed    Provider   `json:"failed,omitempty"`
}

// ProgressOf 依照已寫入的身份欄位推導進度
func ProgressOf(identity session.Identity) Progress {
	p := Progress{Completed: []Provider{}, Username: identity.Username}
	switch {
	case identity.PrimaryAccountID == "":
		p.State, p.Step = StateUnstarted, ProviderDiscord
	case identity.SecondaryAccountID == "":
		p.State, p.Step = StatePending, ProviderForums
		p.Completed = append(p.Completed, ProviderDiscord)
	case identity.TertiaryAccountID == "":
		p.State, p.Step = StatePending, ProviderTeamSpeak
		p.Completed = append(p.Completed, ProviderDiscord, ProviderForums)
	default:
		p.State = StateComplete
		p.Completed = append(p.Completed, ProviderDiscord, ProviderForums, ProviderTeamSpeak)
	}
	return p
}

// ProgressOfSession 除了身份欄位，也帶出目前步驟最近一次的失敗
func ProgressOfSession(sess session.ISession) Progress {
	p := ProgressOf(session.LoadIdentity(sess))
	if failed, ok := ParseProvider(sess.Get(session.KeyFailedStep)); ok && failed == p.Step {
		p.Failed = failed
	}
	return p
}

// Ready 檢查 p 的前一個步驟是否已完成
func Ready(identity session.Identity, p Provider) bool {
	switch p {
	case ProviderForums:
		return identity.PrimaryAccountID != ""
	case ProviderTeamSpeak:
		return identity.SecondaryAccountID != ""
	}
	return true
}
