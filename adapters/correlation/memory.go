package correlation

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore 是單一實例使用的 in-memory Store
type MemoryStore struct {
	cache *ttlcache.Cache[string, string]
	mu    sync.Mutex
}

// NewMemoryStore 建立 MemoryStore 並啟動過期清理，使用完畢需呼叫 Close
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cache := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go cache.Start()
	return &MemoryStore{cache: cache}
}

func (s *MemoryStore) Bind(_ context.Context, sessionToken, correlationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(sessionToken, correlationID, ttlcache.DefaultTTL)
	return nil
}

func (s *MemoryStore) Resolve(_ context.Context, sessionToken string) (string, bool, error) {
	item := s.cache.Get(sessionToken)
	if item == nil {
		return "", false, nil
	}
	return item.Value(), true, nil
}

func (s *MemoryStore) Unbind(_ context.Context, sessionToken, correlationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.cache.Get(sessionToken)
	if item == nil || item.Value() != correlationID {
		return false, nil
	}
	s.cache.Delete(sessionToken)
	return true, nil
}

// Close 停止過期清理
func (s *MemoryStore) Close() {
	s.cache.Stop()
}
