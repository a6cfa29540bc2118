package eligibility

import (
	"testing"
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/logger"
)

type fakeFloatRepo struct {
	balance int64
}

func (f *fakeFloatRepo) Get() (*domain.FloatBalance, error) {
	return &domain.FloatBalance{ID: 1, BalanceMinor: f.balance}, nil
}

func (f *fakeFloatRepo) TopUp(amountMinor int64, note string) error {
	f.balance += amountMinor
	return nil
}

func newGate(balance int64, allowList ...string) (*Gate, *logger.MemoryEventLogger) {
	events := &logger.MemoryEventLogger{}
	gate := NewGate(Config{
		MinTrustScore:      50,
		HoneymoonDays:      30,
		AllowListedUserIDs: allowList,
	}, &fakeFloatRepo{balance: balance}, events)
	return gate, events
}

func profile(trust int, ageDays int) *domain.UserProfile {
	return &domain.UserProfile{
		TrustScore: trust,
		SignupAt:   time.Now().UTC().AddDate(0, 0, -ageDays),
	}
}

func TestEarlyPayoutTrustAndAge(t *testing.T) {
	now := time.Now().UTC()
	gate, events := newGate(1_000_000)

	results, err := gate.AdmitBatch([]Candidate{
		{ID: "p1", UserID: "low-trust", AmountMinor: 5000, Early: true, Profile: profile(40, 90)},
		{ID: "p2", UserID: "young", AmountMinor: 5000, Early: true, Profile: profile(80, 10)},
		{ID: "p3", UserID: "ok", AmountMinor: 5000, Early: true, Profile: profile(80, 90)},
	}, now)
	if err != nil {
		t.Fatalf("AdmitBatch: %v", err)
	}

	if results[0].Rejection == nil || results[0].Rejection.Code != domain.RejectTrustTooLow {
		t.Errorf("low-trust: got %v, want TRUST_TOO_LOW", results[0].Rejection)
	}
	if results[1].Rejection == nil || results[1].Rejection.Code != domain.RejectAccountTooYoung {
		t.Errorf("young: got %v, want ACCOUNT_TOO_YOUNG", results[1].Rejection)
	}
	if results[2].Rejection != nil {
		t.Errorf("ok: unexpected rejection %v", results[2].Rejection)
	}
	if len(events.Entries) != 2 {
		t.Errorf("audit entries = %d, want 2", len(events.Entries))
	}
}

func TestAllowListBypassesTrustButNotFloat(t *testing.T) {
	now := time.Now().UTC()

	// trustScore=40, accountAge=10d: rejected for a normal user.
	gate, _ := newGate(1_000_000)
	results, err := gate.AdmitBatch([]Candidate{
		{ID: "p1", UserID: "u1", AmountMinor: 5000, Early: true, Profile: profile(40, 10)},
	}, now)
	if err != nil {
		t.Fatalf("AdmitBatch: %v", err)
	}
	if results[0].Rejection == nil {
		t.Fatal("expected trust/age rejection for non-allow-listed user")
	}

	// Identical stats, allow-listed: trust/age bypassed.
	gate, _ = newGate(1_000_000, "u1")
	results, err = gate.AdmitBatch([]Candidate{
		{ID: "p1", UserID: "u1", AmountMinor: 5000, Early: true, Profile: profile(40, 10)},
	}, now)
	if err != nil {
		t.Fatalf("AdmitBatch: %v", err)
	}
	if results[0].Rejection != nil {
		t.Fatalf("allow-listed user rejected: %v", results[0].Rejection)
	}

	// Allow-listed but float too small: still blocked.
	gate, _ = newGate(1000, "u1")
	results, err = gate.AdmitBatch([]Candidate{
		{ID: "p1", UserID: "u1", AmountMinor: 5000, Early: true, Profile: profile(40, 10)},
	}, now)
	if err != nil {
		t.Fatalf("AdmitBatch: %v", err)
	}
	if results[0].Rejection == nil || results[0].Rejection.Code != domain.RejectInsufficientFloat {
		t.Fatalf("got %v, want INSUFFICIENT_FLOAT", results[0].Rejection)
	}
}

func TestFloatExcessRejectsWholeEarlyBatch(t *testing.T) {
	now := time.Now().UTC()
	gate, _ := newGate(9000)

	results, err := gate.AdmitBatch([]Candidate{
		{ID: "p1", UserID: "u1", AmountMinor: 5000, Early: true, Profile: profile(80, 90)},
		{ID: "p2", UserID: "u2", AmountMinor: 5000, Early: true, Profile: profile(80, 90)},
		{ID: "c1", UserID: "u3", AmountMinor: 70000, Early: false},
	}, now)
	if err != nil {
		t.Fatalf("AdmitBatch: %v", err)
	}

	// Both early candidates rejected wholesale, no partial fulfillment.
	for _, i := range []int{0, 1} {
		if results[i].Rejection == nil || results[i].Rejection.Code != domain.RejectInsufficientFloat {
			t.Errorf("early candidate %d: got %v, want INSUFFICIENT_FLOAT", i, results[i].Rejection)
		}
	}
	// Standard payouts never count against the float.
	if results[2].Rejection != nil {
		t.Errorf("standard candidate rejected: %v", results[2].Rejection)
	}
}

func TestStandardPayoutBypassesTrustChecks(t *testing.T) {
	now := time.Now().UTC()
	gate, _ := newGate(0) // empty float is irrelevant to cleared funds

	results, err := gate.AdmitBatch([]Candidate{
		{ID: "c1", UserID: "u1", AmountMinor: 123456, Early: false, Profile: profile(0, 0)},
	}, now)
	if err != nil {
		t.Fatalf("AdmitBatch: %v", err)
	}
	if results[0].Rejection != nil {
		t.Fatalf("standard payout rejected: %v", results[0].Rejection)
	}
}
