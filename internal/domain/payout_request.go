package domain

import "time"

type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "PENDING"
	PayoutProcessing PayoutStatus = "PROCESSING"
	PayoutPaid       PayoutStatus = "PAID"
	PayoutFailed     PayoutStatus = "FAILED"
)

type PayoutMethod string

const (
	PayoutMethodGcash PayoutMethod = "GCASH"
	PayoutMethodMaya  PayoutMethod = "MAYA"
	PayoutMethodBank  PayoutMethod = "BANK"
)

// PayoutRequest is a user- or admin-initiated request to disburse approved
// commission balance ahead of schedule.
type PayoutRequest struct {
	ID            string
	UserID        string
	AmountMinor   int64
	Method        PayoutMethod
	Provider      string
	WalletNumber  string
	BankName      string
	BankAccount   string
	Status        PayoutStatus
	ProcessorNote string
	RequestedAt   time.Time
	ProcessedAt   *time.Time
}

// Destination is what the external sender receives.
func (p *PayoutRequest) Destination() string {
	if p.Method == PayoutMethodBank {
		return p.BankName + ":" + p.BankAccount
	}
	return p.WalletNumber
}

// payoutTransitions is the only legal edge set. PAID is terminal.
var payoutTransitions = map[PayoutStatus][]PayoutStatus{
	PayoutPending:    {PayoutProcessing, PayoutFailed},
	PayoutProcessing: {PayoutPaid, PayoutFailed},
}

// CanTransition reports whether from -> to is a legal payout edge.
func CanTransition(from, to PayoutStatus) bool {
	for _, next := range payoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type PayoutRequestRepository interface {
	Create(request *PayoutRequest) error
	GetByID(id string) (*PayoutRequest, error)
	// UpdateStatus applies a guarded transition: the row is only touched
	// when its current status equals from. Returns ErrInvalidTransition
	// when the guard misses.
	UpdateStatus(id string, from, to PayoutStatus, note string) error
	// ListPending returns PENDING requests oldest-first, bounded by limit.
	ListPending(limit int) ([]*PayoutRequest, error)
	// ListStuck returns PENDING/PROCESSING requests older than cutoff.
	ListStuck(cutoff time.Time) ([]*PayoutRequest, error)
	CountByStatus(status PayoutStatus) (int64, error)
}
