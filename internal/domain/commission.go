package domain

import "time"

type CommissionStatus string

const (
	CommissionPending  CommissionStatus = "PENDING"
	CommissionApproved CommissionStatus = "APPROVED"
	CommissionPaid     CommissionStatus = "PAID"
	CommissionFailed   CommissionStatus = "FAILED"
)

type CommissionType string

const (
	CommissionTypeInvitee  CommissionType = "INVITEE"
	CommissionTypeReferrer CommissionType = "REFERRER"
)

// Commission is a confirmed monetary obligation derived from an attributed
// click/order pair. All amounts are minor units (centavos).
type Commission struct {
	ID              string
	UserID          string
	AmountMinor     int64
	Currency        string
	Status          CommissionStatus
	PaidOut         bool
	Source          string
	Type            CommissionType
	IdempotencyKey  string
	MerchantRuleID  string
	ExternalOrderID string
	PayoutRequestID string
	ExternalTxnID   string
	FailReason      string
	HoldUntil       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HoldElapsed reports whether the clearance hold has passed and the
// commission may be disbursed without the early-payout gate.
func (c *Commission) HoldElapsed(now time.Time) bool {
	return !c.HoldUntil.After(now)
}

type CommissionFilters struct {
	UserID   string
	Statuses []CommissionStatus
	DateFrom time.Time
	DateTo   time.Time
}

type CommissionRepository interface {
	Create(commission *Commission) error
	GetByID(id string) (*Commission, error)
	GetByIdempotencyKey(key string) (*Commission, error)

	// Approve flips PENDING -> APPROVED. Any other starting status fails.
	Approve(id string) error
	// Fail flips PENDING|APPROVED -> FAILED with a reason. Paid commissions
	// are terminal and return ErrAlreadyPaid.
	Fail(id, reason string) error
	// MarkPaid atomically re-checks terminal state, decrements the float
	// balance by floatDeltaMinor (0 for standard payouts), sets
	// status=PAID/paid_out=true together and appends the audit entry. Any
	// partial application is rolled back.
	MarkPaid(id, externalTxnID string, floatDeltaMinor int64) error

	// ListDisbursable returns APPROVED, unpaid commissions whose hold has
	// elapsed and that are not yet attached to a payout request,
	// oldest-first, bounded by limit.
	ListDisbursable(now time.Time, limit int) ([]*Commission, error)
	// ListApprovedUnpaidByUser returns the user's APPROVED, unpaid,
	// unattached commissions oldest-first.
	ListApprovedUnpaidByUser(userID string) ([]*Commission, error)
	// ApprovedUnpaidTotal is the fresh sum backing withdrawal validation.
	ApprovedUnpaidTotal(userID string) (int64, error)
	// AttachPayoutRequest stamps the idempotent exclusion marker and marks
	// the commissions paid in the same transaction as the payout request
	// flip; implemented repo-side, exposed here for the runner.
	SettlePayoutRequest(requestID, externalTxnID string, commissionIDs []string, floatDeltaMinor int64) error

	CountByStatus(status CommissionStatus) (int64, error)
	GetCommissions(filters CommissionFilters, page, limit int64) ([]*Commission, int64, error)
}
