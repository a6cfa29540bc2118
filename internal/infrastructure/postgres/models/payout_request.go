package models

import (
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
)

type PayoutRequestModel struct {
	ID            string              `gorm:"primaryKey;type:uuid"`
	UserID        string              `gorm:"index"`
	AmountMinor   int64               `gorm:"not null"`
	Method        domain.PayoutMethod `gorm:"size:16;not null"`
	Provider      string
	WalletNumber  string
	BankName      string
	BankAccount   string
	Status        domain.PayoutStatus `gorm:"index:idx_payout_status_requested"`
	ProcessorNote string
	RequestedAt   time.Time `gorm:"index:idx_payout_status_requested"`
	ProcessedAt   *time.Time
}

func (PayoutRequestModel) TableName() string {
	return "payout_requests"
}
