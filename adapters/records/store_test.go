package records

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"uoauth/models"
)

// fakeClock 每次呼叫前進一秒
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func setupStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, Migrate(db))

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewStore(db, WithClock(clock.Now)), db
}

func newRecord(attempt, key string) *models.AuthenticationRecord {
	return &models.AuthenticationRecord{
		AttemptID:          attempt,
		Username:           "Alpha",
		Email:              "alpha@example.com",
		PrimaryAccountID:   "80351110224678912",
		SecondaryAccountID: key,
		TertiaryAccountID:  "abc/def=",
		TertiaryDatabaseID: 42,
		TertiaryClientIP:   "10.0.0.5",
	}
}

func countActive(t *testing.T, db *gorm.DB, key string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.AuthenticationRecord{}).Where("secondary_account_id = ?", key).Count(&count).Error)
	return count
}

func TestStore_ReplaceFirstRecord(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	record := newRecord("attempt-1", "7")
	prior, err := store.Replace(ctx, record)
	require.NoError(t, err)
	assert.Nil(t, prior)
	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.False(t, record.CreatedAt.IsZero())
	assert.EqualValues(t, 1, countActive(t, db, "7"))

	found, err := store.FindActive(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
	assert.Equal(t, uint64(42), found.TertiaryDatabaseID)

	history, err := store.ListHistory(ctx, "7")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStore_ReplaceArchivesPrior(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	first := newRecord("attempt-1", "7")
	_, err := store.Replace(ctx, first)
	require.NoError(t, err)

	second := newRecord("attempt-2", "7")
	second.TertiaryDatabaseID = 99
	prior, err := store.Replace(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, prior)
	assert.Equal(t, first.ID, prior.ID)
	assert.Equal(t, uint64(42), prior.TertiaryDatabaseID)

	// 有效紀錄只有一筆
	assert.EqualValues(t, 1, countActive(t, db, "7"))
	found, err := store.FindActive(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "attempt-2", found.AttemptID)

	third := newRecord("attempt-3", "7")
	_, err = store.Replace(ctx, third)
	require.NoError(t, err)

	// 歷史紀錄只增不減，依封存時間排序
	history, err := store.ListHistory(ctx, "7")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].RecordID)
	assert.Equal(t, "attempt-1", history[0].AttemptID)
	assert.Equal(t, second.ID, history[1].RecordID)
	assert.True(t, history[0].ArchivedAt.Before(history[1].ArchivedAt))
	assert.Equal(t, first.CreatedAt.Unix(), history[0].CreatedAt.Unix())
}

func TestStore_ReplaceSameAttempt(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	first := newRecord("attempt-1", "7")
	_, err := store.Replace(ctx, first)
	require.NoError(t, err)

	retry := newRecord("attempt-1", "7")
	prior, err := store.Replace(ctx, retry)
	assert.ErrorIs(t, err, ErrDuplicateAttempt)
	assert.Nil(t, prior)
	assert.Equal(t, first.ID, retry.ID)

	history, err := store.ListHistory(ctx, "7")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStore_ReplaceConcurrent(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Replace(ctx, newRecord(fmt.Sprintf("attempt-%d", i), "7"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, countActive(t, db, "7"))
	history, err := store.ListHistory(ctx, "7")
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestStore_ArchiveActive(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	prior, err := store.ArchiveActive(ctx, "7")
	require.NoError(t, err)
	assert.Nil(t, prior)

	record := newRecord("attempt-1", "7")
	_, err = store.Replace(ctx, record)
	require.NoError(t, err)

	prior, err = store.ArchiveActive(ctx, "7")
	require.NoError(t, err)
	require.NotNil(t, prior)
	assert.Equal(t, record.ID, prior.ID)
	assert.EqualValues(t, 0, countActive(t, db, "7"))

	// 重複封存不會新增歷史紀錄
	prior, err = store.ArchiveActive(ctx, "7")
	require.NoError(t, err)
	assert.Nil(t, prior)

	history, err := store.ListHistory(ctx, "7")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = store.FindActive(ctx, "7")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpsertActive(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	first := newRecord("attempt-1", "7")
	require.NoError(t, store.UpsertActive(ctx, first))

	// 有效紀錄不能被覆寫
	updated := newRecord("attempt-2", "7")
	updated.Email = "new@example.com"
	err := store.UpsertActive(ctx, updated)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	assert.EqualValues(t, 1, countActive(t, db, "7"))
	found, err := store.FindActive(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "attempt-1", found.AttemptID)
	assert.Equal(t, "alpha@example.com", found.Email)

	// 先封存再寫入，舊紀錄保留在歷史表
	prior, err := store.ArchiveActive(ctx, "7")
	require.NoError(t, err)
	require.NotNil(t, prior)
	updated = newRecord("attempt-2", "7")
	require.NoError(t, store.UpsertActive(ctx, updated))

	history, err := store.ListHistory(ctx, "7")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first.ID, history[0].RecordID)
	found, err = store.FindActive(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "attempt-2", found.AttemptID)
}

func TestStore_FindAndList(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	alpha := newRecord("attempt-1", "7")
	bravo := newRecord("attempt-2", "8")
	bravo.Username = "Bravo"
	for _, r := range []*models.AuthenticationRecord{alpha, bravo} {
		_, err := store.Replace(ctx, r)
		require.NoError(t, err)
	}

	found, err := store.FindActiveByUsername(ctx, "Bravo")
	require.NoError(t, err)
	assert.Equal(t, "8", found.SecondaryAccountID)

	_, err = store.FindActiveByUsername(ctx, "Charlie")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Username)
	assert.Equal(t, "Bravo", list[1].Username)
}

func TestStore_UniqueAttempt(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Replace(ctx, newRecord("attempt-1", "7"))
	require.NoError(t, err)

	// 同一個 attempt 不能對應兩個論壇帳號
	_, err = store.Replace(ctx, newRecord("attempt-1", "8"))
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
