package commission

import (
	"testing"
	"time"

	"github.com/begintolern/linkmint-core/internal/attribution"
	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/logger"
	"github.com/begintolern/linkmint-core/internal/infrastructure/metrics"
)

// promauto registers on the global registry, so the package shares one
// instance across tests.
var testMetrics = metrics.NewPayoutMetrics()

type fakeCommissionRepo struct {
	byKey    map[string]*domain.Commission
	byID     map[string]*domain.Commission
	created  []*domain.Commission
	approved []string
}

func newFakeCommissionRepo() *fakeCommissionRepo {
	return &fakeCommissionRepo{
		byKey: map[string]*domain.Commission{},
		byID:  map[string]*domain.Commission{},
	}
}

func (f *fakeCommissionRepo) Create(c *domain.Commission) error {
	if _, exists := f.byKey[c.IdempotencyKey]; exists {
		return domain.ErrDuplicateKey
	}
	f.byKey[c.IdempotencyKey] = c
	f.byID[c.ID] = c
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCommissionRepo) GetByID(id string) (*domain.Commission, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrCommissionNotFound
	}
	return c, nil
}

func (f *fakeCommissionRepo) GetByIdempotencyKey(key string) (*domain.Commission, error) {
	return f.byKey[key], nil
}

func (f *fakeCommissionRepo) Approve(id string) error {
	c, ok := f.byID[id]
	if !ok {
		return domain.ErrCommissionNotFound
	}
	if c.Status != domain.CommissionPending {
		return domain.ErrInvalidTransition
	}
	f.approved = append(f.approved, id)
	return nil
}

func (f *fakeCommissionRepo) Fail(id, reason string) error {
	c, ok := f.byID[id]
	if !ok {
		return domain.ErrCommissionNotFound
	}
	if c.Status == domain.CommissionPaid {
		return domain.ErrAlreadyPaid
	}
	c.Status = domain.CommissionFailed
	c.FailReason = reason
	return nil
}

func (f *fakeCommissionRepo) MarkPaid(id, externalTxnID string, floatDeltaMinor int64) error {
	c, ok := f.byID[id]
	if !ok {
		return domain.ErrCommissionNotFound
	}
	if c.Status == domain.CommissionPaid || c.PaidOut {
		return domain.ErrAlreadyPaid
	}
	c.Status = domain.CommissionPaid
	c.PaidOut = true
	c.ExternalTxnID = externalTxnID
	return nil
}

func (f *fakeCommissionRepo) ListDisbursable(now time.Time, limit int) ([]*domain.Commission, error) {
	return nil, nil
}

func (f *fakeCommissionRepo) ListApprovedUnpaidByUser(userID string) ([]*domain.Commission, error) {
	return nil, nil
}

func (f *fakeCommissionRepo) ApprovedUnpaidTotal(userID string) (int64, error) {
	return 0, nil
}

func (f *fakeCommissionRepo) SettlePayoutRequest(requestID, externalTxnID string, commissionIDs []string, floatDeltaMinor int64) error {
	return nil
}

func (f *fakeCommissionRepo) CountByStatus(status domain.CommissionStatus) (int64, error) {
	return 0, nil
}

func (f *fakeCommissionRepo) GetCommissions(filters domain.CommissionFilters, page, limit int64) ([]*domain.Commission, int64, error) {
	return nil, 0, nil
}

type fakeClickRepo struct {
	clicks map[string]*domain.Click
}

func (f *fakeClickRepo) GetByID(id string) (*domain.Click, error) {
	c, ok := f.clicks[id]
	if !ok {
		return nil, domain.ErrCommissionNotFound
	}
	return c, nil
}

type fakeRuleRepo struct {
	rules map[string]*domain.MerchantRule
}

func (f *fakeRuleRepo) GetByID(id string) (*domain.MerchantRule, error) {
	r, ok := f.rules[id]
	if !ok {
		return nil, domain.ErrCommissionNotFound
	}
	return r, nil
}

type fakeReferralRepo struct {
	overrides map[string]*domain.ReferralOverride
}

func (f *fakeReferralRepo) GetOverrideByInvitee(inviteeID string) (*domain.ReferralOverride, error) {
	return f.overrides[inviteeID], nil
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
}

func newIngestUsecase(repo *fakeCommissionRepo, referrals map[string]*domain.ReferralOverride) *DefaultCommissionUsecase {
	now := fixedNow()
	return &DefaultCommissionUsecase{
		Commissions: repo,
		Clicks: &fakeClickRepo{clicks: map[string]*domain.Click{
			"click-1": {ID: "click-1", UserID: "user-1", MerchantID: "rule-1", Source: "shopee", CreatedAt: now.AddDate(0, 0, -2)},
		}},
		Rules: &fakeRuleRepo{rules: map[string]*domain.MerchantRule{
			"rule-1": {ID: "rule-1", CommissionRate: 0.05, CookieWindowDays: 7, PayoutDelayDays: 30, Active: true},
		}},
		Referrals: &fakeReferralRepo{overrides: referrals},
		Events:    &logger.MemoryEventLogger{},
		Metrics:   testMetrics,
		Shares:    attribution.DefaultShares(),
		Now:       fixedNow,
	}
}

func orderInput(orderID, status string) *OrderEventInput {
	return &OrderEventInput{
		SubID:    "click-1",
		OrderID:  orderID,
		Status:   status,
		Currency: "PHP",
		OrderAt:  fixedNow().AddDate(0, 0, -1),
		RawFields: map[string]interface{}{
			"amount_minor": float64(100000),
		},
	}
}

func TestIngestCreatesInviteeLeg(t *testing.T) {
	repo := newFakeCommissionRepo()
	uc := newIngestUsecase(repo, nil)

	result, err := uc.Ingest(orderInput("order-1", "PENDING"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.Skipped || result.Rejection != nil {
		t.Fatalf("unexpected skip/rejection: %+v", result)
	}
	if len(result.Created) != 1 {
		t.Fatalf("legs created = %d, want 1 (no referral override)", len(result.Created))
	}

	leg := result.Created[0]
	if leg.Type != domain.CommissionTypeInvitee {
		t.Errorf("leg type = %s, want INVITEE", leg.Type)
	}
	// 100000 minor gross at 5%: 5000 minor commission, 80% invitee share.
	if leg.AmountMinor != 4000 {
		t.Errorf("invitee amount = %d, want 4000", leg.AmountMinor)
	}
	if leg.Status != domain.CommissionPending {
		t.Errorf("status = %s, want PENDING", leg.Status)
	}
	wantHold := fixedNow().AddDate(0, 0, -1).AddDate(0, 0, 30)
	if !leg.HoldUntil.Equal(wantHold) {
		t.Errorf("hold until = %v, want %v", leg.HoldUntil, wantHold)
	}
	if len(repo.approved) != 0 {
		t.Errorf("pending order auto-approved %d legs", len(repo.approved))
	}
}

func TestIngestCreatesReferrerLegDuringOverride(t *testing.T) {
	repo := newFakeCommissionRepo()
	uc := newIngestUsecase(repo, map[string]*domain.ReferralOverride{
		"user-1": {InviteeID: "user-1", ReferrerID: "ref-9", ActiveUntil: fixedNow().AddDate(0, 1, 0)},
	})

	result, err := uc.Ingest(orderInput("order-2", "PENDING"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(result.Created) != 2 {
		t.Fatalf("legs created = %d, want 2", len(result.Created))
	}
	referrer := result.Created[1]
	if referrer.Type != domain.CommissionTypeReferrer || referrer.UserID != "ref-9" {
		t.Errorf("referrer leg = %+v", referrer)
	}
	if referrer.AmountMinor != 250 {
		t.Errorf("referrer amount = %d, want 250 (5%% of 5000)", referrer.AmountMinor)
	}
}

func TestIngestDuplicateIsBenignSkip(t *testing.T) {
	repo := newFakeCommissionRepo()
	uc := newIngestUsecase(repo, nil)

	if _, err := uc.Ingest(orderInput("order-3", "PENDING")); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	result, err := uc.Ingest(orderInput("order-3", "PENDING"))
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if !result.Skipped || result.SkipReason != "duplicate" {
		t.Fatalf("redelivery result = %+v, want duplicate skip", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("commissions created = %d, want exactly 1", len(repo.created))
	}
}

func TestIngestClearedStatusAutoApproves(t *testing.T) {
	repo := newFakeCommissionRepo()
	uc := newIngestUsecase(repo, nil)

	result, err := uc.Ingest(orderInput("order-4", "CONFIRMED"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(repo.approved) != len(result.Created) {
		t.Errorf("approved %d of %d legs", len(repo.approved), len(result.Created))
	}
	if result.Created[0].Status != domain.CommissionApproved {
		t.Errorf("status = %s, want APPROVED", result.Created[0].Status)
	}
}

func TestIngestCancelledOrderRejected(t *testing.T) {
	repo := newFakeCommissionRepo()
	uc := newIngestUsecase(repo, nil)

	result, err := uc.Ingest(orderInput("order-5", "REFUNDED"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.Rejection == nil || result.Rejection.Code != domain.RejectOrderCancelled {
		t.Fatalf("got %+v, want ORDER_CANCELLED rejection", result.Rejection)
	}
	if len(repo.created) != 0 {
		t.Errorf("cancelled order created %d commissions", len(repo.created))
	}
}

func TestIngestNoAmountSkips(t *testing.T) {
	repo := newFakeCommissionRepo()
	uc := newIngestUsecase(repo, nil)

	input := orderInput("order-6", "PENDING")
	input.RawFields = map[string]interface{}{"note": "missing amount"}

	result, err := uc.Ingest(input)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !result.Skipped || result.SkipReason != string(domain.RejectNoAmountDetected) {
		t.Fatalf("result = %+v, want NO_AMOUNT_DETECTED skip", result)
	}
	if len(repo.created) != 0 {
		t.Errorf("created %d commissions without an amount", len(repo.created))
	}
}

func TestNormalizeOrderStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want ClearanceState
	}{
		{"CONFIRMED", ClearanceCleared},
		{"valid", ClearanceCleared},
		{" settled ", ClearanceCleared},
		{"PENDING", ClearancePending},
		{"hold", ClearancePending},
		{"CANCELLED", ClearanceCancelled},
		{"canceled", ClearanceCancelled},
		{"REVERSED", ClearanceCancelled},
		{"whatever", ClearanceUnknown},
		{"", ClearanceUnknown},
	}
	for _, tc := range cases {
		if got := NormalizeOrderStatus(tc.raw); got != tc.want {
			t.Errorf("NormalizeOrderStatus(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestResolveAmountMinorPriority(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]interface{}
		want   int64
		ok     bool
	}{
		{"minor field wins", map[string]interface{}{"amount_minor": float64(12345), "amount": float64(999)}, 12345, true},
		{"major converted", map[string]interface{}{"sale_amount": float64(123.45)}, 12345, true},
		{"total fallback", map[string]interface{}{"total": float64(50)}, 5000, true},
		{"zero skipped", map[string]interface{}{"amount": float64(0), "total": float64(2)}, 200, true},
		{"nothing usable", map[string]interface{}{"status": "ok"}, 0, false},
		{"non numeric skipped", map[string]interface{}{"amount": "12.50"}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ResolveAmountMinor(tc.fields)
			if got != tc.want || ok != tc.ok {
				t.Errorf("got (%d, %v), want (%d, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}
