package models

import (
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
)

type CommissionModel struct {
	ID              string                  `gorm:"primaryKey;type:uuid"`
	UserID          string                  `gorm:"index:idx_user_status"`
	AmountMinor     int64                   `gorm:"not null"`
	Currency        string                  `gorm:"size:3;not null"`
	Status          domain.CommissionStatus `gorm:"index:idx_user_status;index:idx_status_hold"`
	PaidOut         bool                    `gorm:"not null;default:false"`
	Source          string
	Type            domain.CommissionType `gorm:"size:16"`
	IdempotencyKey  string                `gorm:"uniqueIndex;not null"`
	MerchantRuleID  string
	ExternalOrderID string `gorm:"index"`
	PayoutRequestID string `gorm:"index"`
	ExternalTxnID   string
	FailReason      string
	HoldUntil       time.Time `gorm:"index:idx_status_hold"`
	CreatedAt       time.Time `gorm:"index:idx_created_at"`
	UpdatedAt       time.Time
}

func (CommissionModel) TableName() string {
	return "commissions"
}
