package redis

import (
	"context"
	"fmt"
	"time"

	"uoauth/adapters/session"

	"github.com/redis/go-redis/v9"
)

// Store 實現了 IStore 介面，提供基於 Redis hash 的資料儲存功能
type Store struct {
	client  *redis.Client // Redis 客戶端連線
	options StoreOptions  // Store 的配置選項
}

// StoreOptions 定義了 Store 的配置選項
type StoreOptions struct {
	Prefix string
}

type StoreOption func(*StoreOptions)

// WithStorePrefix 設定 Store 的 key 前綴
func WithStorePrefix(prefix string) StoreOption {
	return func(o *StoreOptions) {
		o.Prefix = prefix
	}
}

// NewStore 建立一個新的 Store 實例
func NewStore(client *redis.Client, opts ...StoreOption) session.IStore {
	options := &StoreOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return &Store{
		client:  client,
		options: *options,
	}
}

// Load 從 Redis 中載入指定名稱的資料
func (s *Store) Load(ctx context.Context, name string) (map[string]string, error) {
	const op = "redis.Store.Load"
	key := s.options.Prefix + name

	result, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get hash: %w", op, err)
	}

	// Redis returns empty map when key doesn't exist
	return result, nil
}

// saveScript 是用於原子性地刪除並設定新的 hash 欄位的 Lua 腳本
// ARGV[1] 是存活時間 (毫秒)，其餘為 field/value 對
// 已存在的 key 保留剩餘的存活時間，存活時間只在第一次建立時設定
var saveScript = redis.NewScript(`
local key = KEYS[1]
local ttl = tonumber(ARGV[1])
local remaining = redis.call('PTTL', key)
redis.call('DEL', key)
if #ARGV > 1 then
    redis.call('HSET', key, unpack(ARGV, 2))
    if remaining > 0 then
        redis.call('PEXPIRE', key, remaining)
    elseif ttl > 0 then
        redis.call('PEXPIRE', key, ttl)
    end
end
return 1
`)

// Save 將資料儲存到 Redis 中，存活時間從第一次儲存開始計算，之後的儲存不會延長
// NOTE: 會先刪除舊的資料，再設定新的資料，這個過程是原子性的
func (s *Store) Save(ctx context.Context, name string, data map[string]string, ttl time.Duration) error {
	const op = "redis.Store.Save"
	key := s.options.Prefix + name
	// 準備參數
	args := make([]any, 0, len(data)*2+1)
	args = append(args, ttl.Milliseconds())
	for k, v := range data {
		args = append(args, k, v)
	}
	// 執行 Lua 腳本
	err := saveScript.Run(ctx, s.client, []string{key}, args...).Err()
	if err != nil {
		return fmt.Errorf("%s: failed to execute save script: %w", op, err)
	}

	return nil
}

// Delete 刪除指定名稱的資料
func (s *Store) Delete(ctx context.Context, name string) error {
	const op = "redis.Store.Delete"
	if err := s.client.Del(ctx, s.options.Prefix+name).Err(); err != nil {
		return fmt.Errorf("%s: failed to delete hash: %w", op, err)
	}
	return nil
}
