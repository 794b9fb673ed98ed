package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Load(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock redismock.ClientMock)
		session  string
		expected map[string]string
		wantErr  bool
	}{
		{
			name: "success",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectHGetAll("test:session1").SetVal(map[string]string{
					"key1": "value1",
					"key2": "value2",
				})
			},
			session: "session1",
			expected: map[string]string{
				"key1": "value1",
				"key2": "value2",
			},
		},
		{
			name: "empty_session",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectHGetAll("test:empty").SetVal(map[string]string{})
			},
			session:  "empty",
			expected: map[string]string{},
		},
		{
			name: "redis_error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectHGetAll("test:session1").
					SetErr(errors.New("redis connection error"))
			},
			session:  "session1",
			wantErr:  true,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 準備測試環境
			client, mock, cleanup := setupTest(t)
			defer cleanup()

			tt.setup(mock)

			store := NewStore(client, WithStorePrefix("test:"))

			// 執行測試
			got, err := store.Load(context.Background(), tt.session)

			// 驗證結果
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStore_Save(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock redismock.ClientMock)
		session string
		data    map[string]string
		wantErr bool
	}{
		{
			name: "success",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectEvalSha(
					saveScript.Hash(),
					[]string{"test:session1"},
					[]interface{}{int64(3600000), "key1", "value1"},
				).SetVal(1)
			},
			session: "session1",
			data: map[string]string{
				"key1": "value1",
			},
		},
		{
			name: "empty_data",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectEvalSha(
					saveScript.Hash(),
					[]string{"test:session1"},
					[]interface{}{int64(3600000)},
				).SetVal(1)
			},
			session: "session1",
			data:    map[string]string{},
		},
		{
			name: "nil_data",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectEvalSha(
					saveScript.Hash(),
					[]string{"test:session1"},
					[]interface{}{int64(3600000)},
				).SetVal(1)
			},
			session: "session1",
			data:    nil,
		},
		{
			name: "redis_error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectEvalSha(
					saveScript.Hash(),
					[]string{"test:session1"},
					[]interface{}{int64(3600000), "key1", "value1"},
				).SetErr(redis.ErrClosed)
			},
			session: "session1",
			data: map[string]string{
				"key1": "value1",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 準備測試環境
			client, mock, cleanup := setupTest(t)
			defer cleanup()

			tt.setup(mock)

			store := NewStore(client, WithStorePrefix("test:"))

			// 執行測試
			err := store.Save(context.Background(), tt.session, tt.data, time.Hour)

			// 驗證結果
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.ExpectDel("test:session1").SetVal(1)
		store := NewStore(client, WithStorePrefix("test:"))
		assert.NoError(t, store.Delete(context.Background(), "session1"))
	})

	t.Run("redis_error", func(t *testing.T) {
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.ExpectDel("test:session1").SetErr(redis.ErrClosed)
		store := NewStore(client, WithStorePrefix("test:"))
		assert.Error(t, store.Delete(context.Background(), "session1"))
	})
}

// 使用 miniredis 驗證 Lua 腳本實際設定了存活時間
func TestStore_SaveSetsTTL(t *testing.T) {
	mr, client := setupMiniredis(t)

	store := NewStore(client, WithStorePrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", map[string]string{"username": "Alpha"}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("test:s1"))

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"username": "Alpha"}, got)

	mr.FastForward(2 * time.Minute)
	got, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

// 重複儲存不會延長存活時間，過期後累積的身份資料會被丟棄
func TestStore_SaveKeepsInitialTTL(t *testing.T) {
	mr, client := setupMiniredis(t)

	store := NewStore(client, WithStorePrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", map[string]string{"primary_account_id": "100"}, time.Hour))
	mr.FastForward(50 * time.Minute)

	require.NoError(t, store.Save(ctx, "s1", map[string]string{
		"primary_account_id":   "100",
		"secondary_account_id": "7",
	}, time.Hour))
	assert.Equal(t, 10*time.Minute, mr.TTL("test:s1"))

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "7", got["secondary_account_id"])

	mr.FastForward(50 * time.Minute)
	got, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got)

	// 過期後重新建立的 session 取得完整的存活時間
	require.NoError(t, store.Save(ctx, "s1", map[string]string{"primary_account_id": "100"}, time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("test:s1"))
}
