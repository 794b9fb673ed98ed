package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// session 中保存身份資料的 key
const (
	KeyAttemptID             = "attempt_id"
	KeyUsername              = "username"
	KeyPrimaryAccountID      = "primary_account_id"
	KeyPrimaryAccountEmail   = "primary_account_email"
	KeySecondaryAccountID    = "secondary_account_id"
	KeySecondaryAccountEmail = "secondary_account_email"
	KeyTertiaryAccountID     = "tertiary_account_id"
	KeyTertiaryDatabaseID    = "tertiary_database_id"
	KeyTertiaryClientIP      = "tertiary_client_ip"
	// KeyFailedStep 記錄最近一次失敗的步驟，不屬於身份資料
	KeyFailedStep = "failed_step"
)

// ErrIdentityConflict 表示嘗試覆寫一個已經設定且值不同的身份欄位
var ErrIdentityConflict = errors.New("identity field already set with a different value")

// Identity 是單次驗證流程累積的身份資料。
// 欄位只能追加：一旦某個步驟寫入，後續步驟不能覆寫。
type Identity struct {
	AttemptID             string
	Username              string
	PrimaryAccountID      string
	PrimaryAccountEmail   string
	SecondaryAccountID    string
	SecondaryAccountEmail string
	TertiaryAccountID     string
	TertiaryDatabaseID    string
	TertiaryClientIP      string
}

func (i Identity) fields() [][2]string {
	return [][2]string{
		{KeyAttemptID, i.AttemptID},
		{KeyUsername, i.Username},
		{KeyPrimaryAccountID, i.PrimaryAccountID},
		{KeyPrimaryAccountEmail, i.PrimaryAccountEmail},
		{KeySecondaryAccountID, i.SecondaryAccountID},
		{KeySecondaryAccountEmail, i.SecondaryAccountEmail},
		{KeyTertiaryAccountID, i.TertiaryAccountID},
		{KeyTertiaryDatabaseID, i.TertiaryDatabaseID},
		{KeyTertiaryClientIP, i.TertiaryClientIP},
	}
}

// LoadIdentity 從已載入的 session 讀出身份資料
func LoadIdentity(s ISession) Identity {
	return Identity{
		AttemptID:             s.Get(KeyAttemptID),
		Username:              s.Get(KeyUsername),
		PrimaryAccountID:      s.Get(KeyPrimaryAccountID),
		PrimaryAccountEmail:   s.Get(KeyPrimaryAccountEmail),
		SecondaryAccountID:    s.Get(KeySecondaryAccountID),
		SecondaryAccountEmail: s.Get(KeySecondaryAccountEmail),
		TertiaryAccountID:     s.Get(KeyTertiaryAccountID),
		TertiaryDatabaseID:    s.Get(KeyTertiaryDatabaseID),
		TertiaryClientIP:      s.Get(KeyTertiaryClientIP),
	}
}

// MergeIdentity 將 patch 中非空的欄位寫入 session。
// 已存在且相同的值視為重試 (no-op)；已存在但不同的值會讓整個 patch 被拒絕。
func MergeIdentity(s ISession, patch Identity) error {
	const op = "session.MergeIdentity"
	fields := patch.fields()
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if current := s.Get(f[0]); current != "" && current != f[1] {
			return fmt.Errorf("[%s] field=%s, err=%w", op, f[0], ErrIdentityConflict)
		}
	}
	for _, f := range fields {
		if f[1] != "" {
			s.Set(f[0], f[1])
		}
	}
	return nil
}

// EnsureAttemptID 確保 session 有驗證流程的識別碼，第一次呼叫時產生
func EnsureAttemptID(s ISession) string {
	if id := s.Get(KeyAttemptID); id != "" {
		return id
	}
	id := uuid.NewString()
	s.Set(KeyAttemptID, id)
	return id
}
