// Package correlation 保存 session token 與即時通知頻道 (correlation id) 的對應
package correlation

import (
	"context"
	"time"
)

// DefaultTTL 和 session 的存活時間一致
const DefaultTTL = time.Hour

// Store 是 session token → correlation id 的 TTL 儲存。
// 同一個 session 重新連線時 Bind 會覆寫舊值；Unbind 只在目前的值等於
// 傳入的 correlation id 時才刪除，舊頻道關閉時不會刪掉新頻道的綁定。
type Store interface {
	Bind(ctx context.Context, sessionToken, correlationID string) error
	Resolve(ctx context.Context, sessionToken string) (string, bool, error)
	Unbind(ctx context.Context, sessionToken, correlationID string) (bool, error)
}
