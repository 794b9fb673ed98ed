package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthenticationRecord 代表一次完成的三方驗證
// 每個論壇帳號 (SecondaryAccountID) 最多只有一筆有效紀錄，舊的紀錄會移到 AuthenticationRecordHistory
type AuthenticationRecord struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	AttemptID          string    `gorm:"type:varchar(64);uniqueIndex;not null;<-:create"`
	Username           string    `gorm:"type:varchar(255);index;not null"`
	Email              string    `gorm:"type:varchar(255);not null"`
	PrimaryAccountID   string    `gorm:"type:varchar(64);not null"`
	SecondaryAccountID string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	TertiaryAccountID  string    `gorm:"type:varchar(255);not null"`
	TertiaryDatabaseID uint64    `gorm:"not null"`
	TertiaryClientIP   string    `gorm:"type:varchar(64)"`
	CreatedAt          time.Time `gorm:"not null"`
}

func (r *AuthenticationRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		r.ID = id
	}
	return nil
}

// Archive 建立此紀錄的歷史副本
func (r *AuthenticationRecord) Archive(archivedAt time.Time) *AuthenticationRecordHistory {
	return &AuthenticationRecordHistory{
		RecordID:           r.ID,
		AttemptID:          r.AttemptID,
		Username:           r.Username,
		Email:              r.Email,
		PrimaryAccountID:   r.PrimaryAccountID,
		SecondaryAccountID: r.SecondaryAccountID,
		TertiaryAccountID:  r.TertiaryAccountID,
		TertiaryDatabaseID: r.TertiaryDatabaseID,
		TertiaryClientIP:   r.TertiaryClientIP,
		CreatedAt:          r.CreatedAt,
		ArchivedAt:         archivedAt,
	}
}

// AuthenticationRecordHistory 是被取代的驗證紀錄，只會新增不會修改
type AuthenticationRecordHistory struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	RecordID           uuid.UUID `gorm:"type:uuid;index;not null;<-:create"`
	AttemptID          string    `gorm:"type:varchar(64);not null;<-:create"`
	Username           string    `gorm:"type:varchar(255);not null;<-:create"`
	Email              string    `gorm:"type:varchar(255);not null;<-:create"`
	PrimaryAccountID   string    `gorm:"type:varchar(64);not null;<-:create"`
	SecondaryAccountID string    `gorm:"type:varchar(64);index;not null;<-:create"`
	TertiaryAccountID  string    `gorm:"type:varchar(255);not null;<-:create"`
	TertiaryDatabaseID uint64    `gorm:"not null;<-:create"`
	TertiaryClientIP   string    `gorm:"type:varchar(64);<-:create"`
	CreatedAt          time.Time `gorm:"not null;<-:create"`
	ArchivedAt         time.Time `gorm:"not null;<-:create"`
}

func (h *AuthenticationRecordHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		h.ID = id
	}
	return nil
}

// All 回傳所有需要 migrate 的 model
func All() []any {
	return []any{
		&AuthenticationRecord{},
		&AuthenticationRecordHistory{},
	}
}
