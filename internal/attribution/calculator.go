package attribution

import (
	"fmt"
	"math"
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
)

// Shares controls how a gross commission is apportioned. Invitee and
// referrer fractions come from config; platform takes the remainder and
// absorbs all rounding.
type Shares struct {
	InviteeFraction  float64
	ReferrerFraction float64
}

func DefaultShares() Shares {
	return Shares{InviteeFraction: 0.80, ReferrerFraction: 0.05}
}

// Input is everything the calculator needs. Now is explicit so referral
// activity evaluation is deterministic.
type Input struct {
	Click    *domain.Click
	Rule     *domain.MerchantRule
	Order    *domain.OrderEvent
	Referral *domain.ReferralOverride
	Shares   Shares
	Now      time.Time
}

// Split is the computed apportionment, all minor units. The three shares
// always sum exactly to GrossMinor.
type Split struct {
	GrossMinor    int64
	InviteeMinor  int64
	ReferrerMinor int64
	PlatformMinor int64
	ReferrerID    string
	HoldUntil     time.Time
}

// Calculate derives the commission split for an attributed order, or a
// structured rejection. It is pure: identical inputs always produce
// identical outputs.
func Calculate(in Input) (*Split, *domain.Rejection) {
	if !in.Rule.Active {
		return nil, &domain.Rejection{
			Code:    domain.RejectRuleInactive,
			Message: fmt.Sprintf("merchant rule %s is inactive", in.Rule.ID),
		}
	}

	// Cancelled orders never enter the ledger. A null-hold "immediately
	// payable" commission for a cancelled order would be an obligation the
	// merchant never confirmed.
	if in.Order.IsCancelled {
		return nil, &domain.Rejection{
			Code:    domain.RejectOrderCancelled,
			Message: fmt.Sprintf("order %s is cancelled", in.Order.OrderID),
		}
	}

	windowEnd := in.Click.CreatedAt.AddDate(0, 0, in.Rule.CookieWindowDays)
	if in.Order.OrderAt.Before(in.Click.CreatedAt) || in.Order.OrderAt.After(windowEnd) {
		return nil, &domain.Rejection{
			Code: domain.RejectOutsideCookieWindow,
			Message: fmt.Sprintf("order %s at %s outside click window [%s, %s]",
				in.Order.OrderID,
				in.Order.OrderAt.Format(time.RFC3339),
				in.Click.CreatedAt.Format(time.RFC3339),
				windowEnd.Format(time.RFC3339)),
		}
	}

	gross := roundMinor(float64(in.Order.GrossMinor) * NormalizeRate(in.Rule.CommissionRate))
	invitee := roundMinor(float64(gross) * in.Shares.InviteeFraction)

	var referrer int64
	var referrerID string
	if in.Referral.ActiveAt(in.Now) {
		referrer = roundMinor(float64(gross) * in.Shares.ReferrerFraction)
		referrerID = in.Referral.ReferrerID
	}

	// Platform takes whatever is left, so the sum is exact by construction.
	platform := gross - invitee - referrer

	return &Split{
		GrossMinor:    gross,
		InviteeMinor:  invitee,
		ReferrerMinor: referrer,
		PlatformMinor: platform,
		ReferrerID:    referrerID,
		HoldUntil:     in.Order.OrderAt.AddDate(0, 0, in.Rule.PayoutDelayDays),
	}, nil
}

// NormalizeRate canonicalizes a commission rate to a fraction. Rules store
// rates inconsistently: 0.05 and 5 both mean five percent.
func NormalizeRate(rate float64) float64 {
	if rate > 1 {
		return rate / 100
	}
	return rate
}

// roundMinor rounds to the nearest minor unit. Fractional centavos are
// never persisted.
func roundMinor(v float64) int64 {
	return int64(math.Round(v))
}
