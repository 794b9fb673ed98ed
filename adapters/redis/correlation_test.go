package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationStore(t *testing.T) {
	mr, client := setupMiniredis(t)
	store := NewCorrelationStore(client, "corr:", time.Minute)
	ctx := context.Background()

	_, ok, err := store.Resolve(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Bind(ctx, "s1", "c1"))
	assert.Equal(t, time.Minute, mr.TTL("corr:s1"))

	require.NoError(t, store.Bind(ctx, "s1", "c2"))
	removed, err := store.Unbind(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.False(t, removed, "stale channel must not remove the new binding")

	id, ok, err := store.Resolve(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c2", id)

	removed, err = store.Unbind(ctx, "s1", "c2")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, mr.Exists("corr:s1"))
}

func TestCorrelationStore_RedisError(t *testing.T) {
	client, mock, cleanup := setupTest(t)
	defer cleanup()

	mock.ExpectGet("corr:s1").SetErr(assert.AnError)
	store := NewCorrelationStore(client, "corr:", time.Minute)
	_, _, err := store.Resolve(context.Background(), "s1")
	assert.ErrorIs(t, err, assert.AnError)
}
