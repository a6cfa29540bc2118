package models

import (
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
)

// FloatBalanceModel is the singleton reserve row. Version backs optimistic
// detection; the decrement path additionally takes a row lock.
type FloatBalanceModel struct {
	ID           int64 `gorm:"primaryKey"`
	BalanceMinor int64 `gorm:"not null"`
	Version      int64 `gorm:"not null;default:0"`
	UpdatedAt    time.Time
}

func (FloatBalanceModel) TableName() string {
	return "float_balance"
}

type EventLogModel struct {
	ID        uint                 `gorm:"primaryKey"`
	Type      string               `gorm:"index"`
	Severity  domain.EventSeverity `gorm:"index:idx_severity_created"`
	Message   string
	Detail    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index:idx_severity_created"`
}

func (EventLogModel) TableName() string {
	return "event_logs"
}

type SettingModel struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (SettingModel) TableName() string {
	return "ops_settings"
}

type AuthTokenModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"index"`
	Token     string `gorm:"uniqueIndex"`
	Purpose   string
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

func (AuthTokenModel) TableName() string {
	return "auth_tokens"
}
