package commission

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/begintolern/linkmint-core/internal/attribution"
	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/google/uuid"
)

// OrderEventInput is a normalized inbound order/attribution event. SubID is
// the external sub-identifier carrying the originating click; RawFields
// holds the drift-prone upstream payload for amount resolution.
type OrderEventInput struct {
	SubID       string
	OrderID     string
	RuleID      string
	Status      string
	Currency    string
	OrderAt     time.Time
	IsCancelled bool
	RawFields   map[string]interface{}
}

// IngestResult reports what ingestion did, including benign skips.
type IngestResult struct {
	Created    []*domain.Commission
	Skipped    bool
	SkipReason string
	Rejection  *domain.Rejection
}

// IdempotencyKey derives the ledger dedup key from the external order and
// sub identifiers plus the share leg. Two events for the same (order, sub)
// pair always collide here, which is the point.
func IdempotencyKey(orderID, subID string, typ domain.CommissionType) string {
	return fmt.Sprintf("%s:%s:%s", orderID, subID, typ)
}

// Ingest turns an attributed order event into ledger entries, exactly once
// per (click, order) pair. Re-delivery of the same event is a logged no-op,
// never an error.
func (uc *DefaultCommissionUsecase) Ingest(input *OrderEventInput) (*IngestResult, error) {
	now := uc.Now()

	grossMinor, ok := ResolveAmountMinor(input.RawFields)
	if !ok {
		uc.Events.Log(&domain.EventLog{
			Type:     "ingest_skipped",
			Severity: domain.SeverityWarn,
			Message:  string(domain.RejectNoAmountDetected),
			Detail:   fmt.Sprintf("order=%s sub=%s: no resolvable amount field", input.OrderID, input.SubID),
		})
		return &IngestResult{Skipped: true, SkipReason: string(domain.RejectNoAmountDetected)}, nil
	}

	clearance := NormalizeOrderStatus(input.Status)

	click, err := uc.Clicks.GetByID(input.SubID)
	if err != nil {
		return nil, fmt.Errorf("resolving click %s: %w", input.SubID, err)
	}
	rule, err := uc.resolveRule(input, click)
	if err != nil {
		return nil, err
	}
	referral, err := uc.Referrals.GetOverrideByInvitee(click.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving referral override for %s: %w", click.UserID, err)
	}

	split, rejection := attribution.Calculate(attribution.Input{
		Click: click,
		Rule:  rule,
		Order: &domain.OrderEvent{
			OrderID:     input.OrderID,
			OrderAt:     input.OrderAt,
			GrossMinor:  grossMinor,
			Currency:    input.Currency,
			IsCancelled: input.IsCancelled || clearance == ClearanceCancelled,
		},
		Referral: referral,
		Shares:   uc.Shares,
		Now:      now,
	})
	if rejection != nil {
		uc.Events.Log(&domain.EventLog{
			Type:     "attribution_rejected",
			Severity: domain.SeverityWarn,
			Message:  string(rejection.Code),
			Detail:   rejection.Message,
		})
		uc.Metrics.RecordAttributionRejected(string(rejection.Code))
		return &IngestResult{Rejection: rejection}, nil
	}

	// Idempotency check on the invitee leg covers the whole event: legs are
	// only ever written together.
	inviteeKey := IdempotencyKey(input.OrderID, input.SubID, domain.CommissionTypeInvitee)
	if existing, err := uc.Commissions.GetByIdempotencyKey(inviteeKey); err != nil {
		return nil, fmt.Errorf("idempotency lookup %s: %w", inviteeKey, err)
	} else if existing != nil {
		uc.Events.Log(&domain.EventLog{
			Type:     "ingest_duplicate",
			Severity: domain.SeverityInfo,
			Message:  "duplicate order event skipped",
			Detail:   fmt.Sprintf("key=%s commission=%s", inviteeKey, existing.ID),
		})
		return &IngestResult{Skipped: true, SkipReason: "duplicate"}, nil
	}

	created, err := uc.persistSplit(input, click, rule, split, now)
	if err != nil {
		return nil, err
	}

	// External clearance carried on the event itself moves the fresh legs
	// straight to APPROVED.
	if clearance == ClearanceCleared {
		for _, c := range created {
			if err := uc.Commissions.Approve(c.ID); err != nil {
				return nil, fmt.Errorf("approving cleared commission %s: %w", c.ID, err)
			}
			c.Status = domain.CommissionApproved
		}
	}

	slog.Info("order event ingested",
		"order_id", input.OrderID,
		"sub_id", input.SubID,
		"gross_minor", split.GrossMinor,
		"legs", len(created),
		"cleared", clearance == ClearanceCleared)

	return &IngestResult{Created: created}, nil
}

func (uc *DefaultCommissionUsecase) resolveRule(input *OrderEventInput, click *domain.Click) (*domain.MerchantRule, error) {
	ruleID := input.RuleID
	if ruleID == "" {
		ruleID = click.MerchantID
	}
	rule, err := uc.Rules.GetByID(ruleID)
	if err != nil {
		return nil, fmt.Errorf("resolving merchant rule %s: %w", ruleID, err)
	}
	return rule, nil
}

func (uc *DefaultCommissionUsecase) persistSplit(
	input *OrderEventInput,
	click *domain.Click,
	rule *domain.MerchantRule,
	split *attribution.Split,
	now time.Time) ([]*domain.Commission, error) {

	legs := []*domain.Commission{{
		ID:              uuid.NewString(),
		UserID:          click.UserID,
		AmountMinor:     split.InviteeMinor,
		Currency:        input.Currency,
		Status:          domain.CommissionPending,
		Source:          click.Source,
		Type:            domain.CommissionTypeInvitee,
		IdempotencyKey:  IdempotencyKey(input.OrderID, input.SubID, domain.CommissionTypeInvitee),
		MerchantRuleID:  rule.ID,
		ExternalOrderID: input.OrderID,
		HoldUntil:       split.HoldUntil,
		CreatedAt:       now,
	}}

	if split.ReferrerMinor > 0 {
		legs = append(legs, &domain.Commission{
			ID:              uuid.NewString(),
			UserID:          split.ReferrerID,
			AmountMinor:     split.ReferrerMinor,
			Currency:        input.Currency,
			Status:          domain.CommissionPending,
			Source:          "referral_override",
			Type:            domain.CommissionTypeReferrer,
			IdempotencyKey:  IdempotencyKey(input.OrderID, input.SubID, domain.CommissionTypeReferrer),
			MerchantRuleID:  rule.ID,
			ExternalOrderID: input.OrderID,
			HoldUntil:       split.HoldUntil,
			CreatedAt:       now,
		})
	}

	for _, leg := range legs {
		if err := uc.Commissions.Create(leg); err != nil {
			return nil, fmt.Errorf("creating commission %s: %w", leg.IdempotencyKey, err)
		}
		uc.Events.Log(&domain.EventLog{
			Type:     "commission_created",
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("commission %s created", leg.ID),
			Detail: fmt.Sprintf("user=%s type=%s amount=%d hold_until=%s key=%s",
				leg.UserID, leg.Type, leg.AmountMinor, leg.HoldUntil.Format(time.RFC3339), leg.IdempotencyKey),
		})
		uc.Metrics.RecordCommissionCreated(string(leg.Type), input.Currency, leg.AmountMinor)
	}

	// The platform share is audit-only: it is not a payable obligation.
	uc.Events.Log(&domain.EventLog{
		Type:     "platform_share_recorded",
		Severity: domain.SeverityInfo,
		Message:  fmt.Sprintf("platform share for order %s", input.OrderID),
		Detail:   fmt.Sprintf("amount=%d gross=%d", split.PlatformMinor, split.GrossMinor),
	})

	return legs, nil
}
