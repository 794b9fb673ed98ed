// Package provision 負責把 Discord 角色的變更送給 Discord bot。
// bot 可以透過 gRPC (ProvisionService) 或 redis stream 接收變更。
package provision

import (
	"context"
	"errors"
)

// RevokeAll 放在 Request.Revoke 中代表移除使用者所有由系統管理的角色
const RevokeAll = "Symbol(all)"

var ErrRejected = errors.New("provision request rejected")

// Request 是一次角色變更，ID 為 Discord 使用者 ID
type Request struct {
	ID     string
	Assign []string
	Revoke []string
}

// RevokesAll 判斷是否為移除所有角色的請求
func (r Request) RevokesAll() bool {
	for _, role := range r.Revoke {
		if role == RevokeAll {
			return true
		}
	}
	return false
}

// IProvisioner 定義了 Discord 角色變更的操作介面
type IProvisioner interface {
	Provision(ctx context.Context, req Request) error
	Close() error
}
