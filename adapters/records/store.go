// Package records 保存完成驗證的紀錄。
// 每個論壇帳號最多一筆有效紀錄，被取代的紀錄會在同一個 transaction 中移到歷史表。
package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"uoauth/models"
)

var (
	ErrNotFound = errors.New("authentication record not found")
	// ErrDuplicateAttempt 表示同一次驗證已經寫入過有效紀錄
	ErrDuplicateAttempt = errors.New("authentication attempt already recorded")
)

// IStore 定義了驗證紀錄的操作介面
type IStore interface {
	ArchiveActive(ctx context.Context, key string) (*models.AuthenticationRecord, error)
	UpsertActive(ctx context.Context, record *models.AuthenticationRecord) error
	Replace(ctx context.Context, record *models.AuthenticationRecord) (*models.AuthenticationRecord, error)
	FindActive(ctx context.Context, key string) (*models.AuthenticationRecord, error)
	FindActiveByUsername(ctx context.Context, username string) (*models.AuthenticationRecord, error)
	ListActive(ctx context.Context) ([]models.AuthenticationRecord, error)
	ListHistory(ctx context.Context, key string) ([]models.AuthenticationRecordHistory, error)
}

type Store struct {
	db    *gorm.DB
	clock func() time.Time
}

type StoreOption func(*Store)

// WithClock 設置取得目前時間的函式
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		s.clock = clock
	}
}

func NewStore(db *gorm.DB, opts ...StoreOption) *Store {
	s := &Store{
		db:    db,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate 建立或更新資料表
func Migrate(db *gorm.DB) error {
	const op = "records.Migrate"
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("[%s] Fail to migrate, err=%w", op, err)
	}
	return nil
}

// lockActive 鎖定 key 對應的有效紀錄，不存在時回傳 nil
func lockActive(tx *gorm.DB, key string) (*models.AuthenticationRecord, error) {
	var record models.AuthenticationRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("secondary_account_id = ?", key).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// archive 將有效紀錄複製到歷史表後刪除
func (s *Store) archive(tx *gorm.DB, record *models.AuthenticationRecord) error {
	if err := tx.Create(record.Archive(s.clock().UTC())).Error; err != nil {
		return fmt.Errorf("fail to create history, err=%w", err)
	}
	if err := tx.Delete(&models.AuthenticationRecord{}, "id = ?", record.ID).Error; err != nil {
		return fmt.Errorf("fail to delete active record, err=%w", err)
	}
	return nil
}

// archiveActive 鎖定並封存 key 的有效紀錄，沒有有效紀錄時回傳 nil
func (s *Store) archiveActive(tx *gorm.DB, key string) (*models.AuthenticationRecord, error) {
	record, err := lockActive(tx, key)
	if err != nil {
		return nil, fmt.Errorf("fail to lock active record, err=%w", err)
	}
	if record == nil {
		return nil, nil
	}
	if err := s.archive(tx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// insertActive 只新增，key 已有有效紀錄時回傳 gorm.ErrDuplicatedKey
func (s *Store) insertActive(tx *gorm.DB, record *models.AuthenticationRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.clock().UTC()
	}
	return tx.Create(record).Error
}

// ArchiveActive 將 key 的有效紀錄移到歷史表並回傳，沒有有效紀錄時回傳 nil, nil。
// 重複呼叫不會產生多筆歷史紀錄。
func (s *Store) ArchiveActive(ctx context.Context, key string) (*models.AuthenticationRecord, error) {
	const op = "records.ArchiveActive"

	var prior *models.AuthenticationRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		prior, err = s.archiveActive(tx, key)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] key=%s, err=%w", op, key, err)
	}
	return prior, nil
}

// UpsertActive 寫入有效紀錄。有效紀錄不會被原地修改，
// key 已有有效紀錄時回傳 gorm.ErrDuplicatedKey，需要先 ArchiveActive 或改用 Replace
func (s *Store) UpsertActive(ctx context.Context, record *models.AuthenticationRecord) error {
	const op = "records.UpsertActive"
	if err := s.insertActive(s.db.WithContext(ctx), record); err != nil {
		return fmt.Errorf("[%s] Fail to create record, key=%s, err=%w", op, record.SecondaryAccountID, err)
	}
	return nil
}

// Replace 在同一個 transaction 中封存舊的有效紀錄並寫入新紀錄，回傳被取代的紀錄。
// 同一次驗證重複呼叫時回傳 ErrDuplicateAttempt，且 record 會被填入已存在的紀錄。
func (s *Store) Replace(ctx context.Context, record *models.AuthenticationRecord) (*models.AuthenticationRecord, error) {
	const op = "records.Replace"

	var prior *models.AuthenticationRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := lockActive(tx, record.SecondaryAccountID)
		if err != nil {
			return fmt.Errorf("fail to lock active record, err=%w", err)
		}
		if existing != nil && existing.AttemptID == record.AttemptID {
			*record = *existing
			return ErrDuplicateAttempt
		}

		if prior, err = s.archiveActive(tx, record.SecondaryAccountID); err != nil {
			return err
		}
		record.CreatedAt = s.clock().UTC()
		if err := s.insertActive(tx, record); err != nil {
			return fmt.Errorf("fail to create record, err=%w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] key=%s, err=%w", op, record.SecondaryAccountID, err)
	}
	return prior, nil
}

func (s *Store) FindActive(ctx context.Context, key string) (*models.AuthenticationRecord, error) {
	const op = "records.FindActive"
	return s.findActive(ctx, op, "secondary_account_id = ?", key)
}

// FindActiveByUsername 以使用者名稱尋找，同名時回傳最新的紀錄
func (s *Store) FindActiveByUsername(ctx context.Context, username string) (*models.AuthenticationRecord, error) {
	const op = "records.FindActiveByUsername"
	return s.findActive(ctx, op, "username = ?", username)
}

func (s *Store) findActive(ctx context.Context, op string, query string, arg string) (*models.AuthenticationRecord, error) {
	var record models.AuthenticationRecord
	err := s.db.WithContext(ctx).
		Where(query, arg).
		Order("created_at DESC").
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("[%s] %s, err=%w", op, arg, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to find record, err=%w", op, err)
	}
	return &record, nil
}

func (s *Store) ListActive(ctx context.Context) ([]models.AuthenticationRecord, error) {
	const op = "records.ListActive"
	var list []models.AuthenticationRecord
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("[%s] Fail to list records, err=%w", op, err)
	}
	return list, nil
}

// ListHistory 回傳 key 被取代過的紀錄，依封存時間排序
func (s *Store) ListHistory(ctx context.Context, key string) ([]models.AuthenticationRecordHistory, error) {
	const op = "records.ListHistory"
	var list []models.AuthenticationRecordHistory
	err := s.db.WithContext(ctx).
		Where("secondary_account_id = ?", key).
		Order("archived_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to list history, key=%s, err=%w", op, key, err)
	}
	return list, nil
}
