package domain

import "time"

// FloatBalance is the platform reserve available for early payouts. It is a
// singleton row; every writer re-reads it inside its own transaction
// immediately before decrementing.
type FloatBalance struct {
	ID           int64
	BalanceMinor int64
	Version      int64
	UpdatedAt    time.Time
}

type FloatRepository interface {
	Get() (*FloatBalance, error)
	// TopUp credits the reserve and logs the adjustment.
	TopUp(amountMinor int64, note string) error
}

// UserProfile carries the externally computed signals the eligibility gate
// consumes. Trust score is an input here, never computed by this core.
type UserProfile struct {
	UserID      string
	TrustScore  int
	AllowListed bool
	SignupAt    time.Time
}

// AccountAgeDays is measured in whole days at the supplied time.
func (u *UserProfile) AccountAgeDays(now time.Time) int {
	return int(now.Sub(u.SignupAt).Hours() / 24)
}

type UserProfileRepository interface {
	GetByUserID(userID string) (*UserProfile, error)
}
