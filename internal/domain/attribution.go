package domain

import "time"

// Click is an externally produced tracking record. Immutable here.
type Click struct {
	ID         string
	UserID     string
	MerchantID string
	Source     string
	CreatedAt  time.Time
}

// MerchantRule is source-of-truth attribution data. Read-only input: this
// core never mutates rules.
type MerchantRule struct {
	ID               string
	Name             string
	DomainPattern    string
	CommissionType   string
	CommissionRate   float64
	CookieWindowDays int
	PayoutDelayDays  int
	Active           bool
}

// OrderEvent is a normalized external order, keyed by the merchant-side
// identifier. Gross value is minor units.
type OrderEvent struct {
	OrderID     string
	OrderAt     time.Time
	GrossMinor  int64
	Currency    string
	IsCancelled bool
}

type ClickRepository interface {
	GetByID(id string) (*Click, error)
}

type MerchantRuleRepository interface {
	GetByID(id string) (*MerchantRule, error)
}

// ReferralOverride is the time-boxed bonus window during which a referrer
// earns a share of the invitee's commissions.
type ReferralOverride struct {
	InviteeID   string
	ReferrerID  string
	ActiveUntil time.Time
}

// ActiveAt reports whether the override window still covers the given time.
func (r *ReferralOverride) ActiveAt(now time.Time) bool {
	return r != nil && now.Before(r.ActiveUntil)
}

type ReferralRepository interface {
	// GetOverrideByInvitee returns nil, nil when the invitee has no referral
	// relationship.
	GetOverrideByInvitee(inviteeID string) (*ReferralOverride, error)
}
