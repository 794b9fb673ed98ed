package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"uoauth/adapters/correlation"

	"github.com/redis/go-redis/v9"
)

// CorrelationStore 以 SET EX 保存 session token 與 correlation id 的對應，多個實例共用
type CorrelationStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCorrelationStore 建立 CorrelationStore
func NewCorrelationStore(client *redis.Client, prefix string, ttl time.Duration) correlation.Store {
	if ttl <= 0 {
		ttl = correlation.DefaultTTL
	}
	return &CorrelationStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *CorrelationStore) Bind(ctx context.Context, sessionToken, correlationID string) error {
	const op = "redis.CorrelationStore.Bind"
	if err := s.client.Set(ctx, s.prefix+sessionToken, correlationID, s.ttl).Err(); err != nil {
		return fmt.Errorf("[%s] Fail to set binding, err=%w", op, err)
	}
	return nil
}

func (s *CorrelationStore) Resolve(ctx context.Context, sessionToken string) (string, bool, error) {
	const op = "redis.CorrelationStore.Resolve"
	id, err := s.client.Get(ctx, s.prefix+sessionToken).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[%s] Fail to get binding, err=%w", op, err)
	}
	return id, true, nil
}

// unbindScript 只在值相同時刪除
var unbindScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

func (s *CorrelationStore) Unbind(ctx context.Context, sessionToken, correlationID string) (bool, error) {
	const op = "redis.CorrelationStore.Unbind"
	n, err := unbindScript.Run(ctx, s.client, []string{s.prefix + sessionToken}, correlationID).Int()
	if err != nil {
		return false, fmt.Errorf("[%s] Fail to execute unbind script, err=%w", op, err)
	}
	return n == 1, nil
}
