package models

import "time"

// ClickModel rows are produced by the external tracking layer; this core
// only reads them.
type ClickModel struct {
	ID         string `gorm:"primaryKey"`
	UserID     string `gorm:"index"`
	MerchantID string `gorm:"index"`
	Source     string
	CreatedAt  time.Time
}

func (ClickModel) TableName() string {
	return "clicks"
}

// MerchantRuleModel is administered elsewhere; read-only here.
type MerchantRuleModel struct {
	ID               string `gorm:"primaryKey"`
	Name             string
	DomainPattern    string
	CommissionType   string
	CommissionRate   float64
	CookieWindowDays int
	PayoutDelayDays  int
	Active           bool `gorm:"index"`
}

func (MerchantRuleModel) TableName() string {
	return "merchant_rules"
}

type ReferralOverrideModel struct {
	InviteeID   string `gorm:"primaryKey"`
	ReferrerID  string `gorm:"index"`
	ActiveUntil time.Time
}

func (ReferralOverrideModel) TableName() string {
	return "referral_overrides"
}

// UserProfileModel carries externally computed trust signals.
type UserProfileModel struct {
	UserID      string `gorm:"primaryKey"`
	TrustScore  int
	AllowListed bool
	SignupAt    time.Time
}

func (UserProfileModel) TableName() string {
	return "user_profiles"
}
