package correlation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemoryStore(t *testing.T) {
	defer goleak.VerifyNone(t)
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	_, ok, err := store.Resolve(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Bind(ctx, "s1", "c1"))
	id, ok, err := store.Resolve(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c1", id)

	// 重新連線覆寫綁定
	require.NoError(t, store.Bind(ctx, "s1", "c2"))

	// 舊頻道關閉不影響新綁定
	removed, err := store.Unbind(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.False(t, removed)
	id, _, _ = store.Resolve(ctx, "s1")
	assert.Equal(t, "c2", id)

	removed, err = store.Unbind(ctx, "s1", "c2")
	require.NoError(t, err)
	assert.True(t, removed)
	_, ok, _ = store.Resolve(ctx, "s1")
	assert.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(20 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Bind(ctx, "s1", "c1"))
	assert.Eventually(t, func() bool {
		_, ok, _ := store.Resolve(ctx, "s1")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
