package domain

import "time"

// Actor is the resolved authorization capability for a request. Role claim,
// allow-list membership and persisted flags are folded in once, at the
// delivery boundary, instead of being re-derived at every call site.
type Actor struct {
	UserID      string
	Role        string
	AllowListed bool
}

func (a Actor) Admin() bool {
	return a.Role == "ADMIN"
}

// CanTransition reports whether this actor may drive ledger or payout
// transitions. Self-service submission does not require it.
func (a Actor) CanTransitionPayouts() bool {
	return a.Admin()
}

// Settings is the persisted operational flag store (auto-disbursement
// switch and friends).
type Settings interface {
	GetBool(key string, fallback bool) (bool, error)
	SetBool(key string, value bool) error
}

const SettingAutoDisbursement = "auto_disbursement_enabled"

// AuthToken is a short-lived token row subject to the expired-token purge
// remedy.
type AuthToken struct {
	ID        uint
	UserID    string
	Token     string
	Purpose   string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type AuthTokenRepository interface {
	DeleteExpired(now time.Time) (int64, error)
}
