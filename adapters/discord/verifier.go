package discord

import (
	"crypto/subtle"

	"github.com/google/uuid"
)

// ExchangeVerifier 保存發出授權請求時的 state，用於驗證 callback
type ExchangeVerifier struct {
	reqState string
}

// NewState 產生一個新的 state
func NewState() string {
	return uuid.NewString()
}

func NewExchangeVerifier(reqState string) *ExchangeVerifier {
	return &ExchangeVerifier{reqState: reqState}
}

// VerifyState 驗證狀態值是否匹配
func (v *ExchangeVerifier) VerifyState(state string) bool {
	if v.reqState == "" || state == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(state), []byte(v.reqState)) == 1
}
