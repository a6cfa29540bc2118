package domain

import "errors"

var (
	ErrAlreadyPaid        = errors.New("commission already paid")
	ErrDuplicateKey       = errors.New("idempotency key already ingested")
	ErrInvalidTransition  = errors.New("illegal status transition")
	ErrInsufficientFloat  = errors.New("insufficient float balance")
	ErrCommissionNotFound = errors.New("commission not found")
	ErrPayoutNotFound     = errors.New("payout request not found")
	ErrNotAuthorized      = errors.New("actor not authorized")
	ErrAmountExceedsTotal = errors.New("amount exceeds approved unpaid total")
)

// RejectionCode is the structured reason attached to every refusal so
// operators can triage without re-deriving state.
type RejectionCode string

const (
	RejectOutsideCookieWindow RejectionCode = "OUTSIDE_COOKIE_WINDOW"
	RejectOrderCancelled      RejectionCode = "ORDER_CANCELLED"
	RejectRuleInactive        RejectionCode = "RULE_INACTIVE"
	RejectTrustTooLow         RejectionCode = "TRUST_TOO_LOW"
	RejectAccountTooYoung     RejectionCode = "ACCOUNT_TOO_YOUNG"
	RejectInsufficientFloat   RejectionCode = "INSUFFICIENT_FLOAT"
	RejectAlreadyPaid         RejectionCode = "ALREADY_PAID"
	RejectNoAmountDetected    RejectionCode = "NO_AMOUNT_DETECTED"
)

// Rejection pairs a code with enough context for the audit trail.
type Rejection struct {
	Code    RejectionCode
	Message string
}

func (r *Rejection) Error() string {
	return string(r.Code) + ": " + r.Message
}
