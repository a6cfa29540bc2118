package disburse

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/logger"
	"github.com/begintolern/linkmint-core/internal/infrastructure/metrics"
	"github.com/begintolern/linkmint-core/internal/infrastructure/sender"
	"github.com/begintolern/linkmint-core/internal/usecase/eligibility"
)

var testMetrics = metrics.NewPayoutMetrics()

type fakeCommissionRepo struct {
	disbursable  []*domain.Commission
	byUser       map[string][]*domain.Commission
	markPaidErr  error
	paid         []string
	settled      [][]string
	settledFloat int64
}

func (f *fakeCommissionRepo) Create(c *domain.Commission) error { return nil }

func (f *fakeCommissionRepo) GetByID(id string) (*domain.Commission, error) {
	return nil, domain.ErrCommissionNotFound
}

func (f *fakeCommissionRepo) GetByIdempotencyKey(key string) (*domain.Commission, error) {
	return nil, nil
}

func (f *fakeCommissionRepo) Approve(id string) error      { return nil }
func (f *fakeCommissionRepo) Fail(id, reason string) error { return nil }

func (f *fakeCommissionRepo) MarkPaid(id, externalTxnID string, floatDeltaMinor int64) error {
	if f.markPaidErr != nil {
		return f.markPaidErr
	}
	f.paid = append(f.paid, id)
	for _, c := range f.disbursable {
		if c.ID == id {
			c.Status = domain.CommissionPaid
			c.PaidOut = true
			c.ExternalTxnID = externalTxnID
		}
	}
	return nil
}

func (f *fakeCommissionRepo) ListDisbursable(now time.Time, limit int) ([]*domain.Commission, error) {
	if len(f.disbursable) > limit {
		return f.disbursable[:limit], nil
	}
	return f.disbursable, nil
}

func (f *fakeCommissionRepo) ListApprovedUnpaidByUser(userID string) ([]*domain.Commission, error) {
	return f.byUser[userID], nil
}

func (f *fakeCommissionRepo) ApprovedUnpaidTotal(userID string) (int64, error) {
	var total int64
	for _, c := range f.byUser[userID] {
		total += c.AmountMinor
	}
	return total, nil
}

func (f *fakeCommissionRepo) SettlePayoutRequest(requestID, externalTxnID string, commissionIDs []string, floatDeltaMinor int64) error {
	f.settled = append(f.settled, commissionIDs)
	f.settledFloat += floatDeltaMinor
	return nil
}

func (f *fakeCommissionRepo) CountByStatus(status domain.CommissionStatus) (int64, error) {
	return 0, nil
}

func (f *fakeCommissionRepo) GetCommissions(filters domain.CommissionFilters, page, limit int64) ([]*domain.Commission, int64, error) {
	return nil, 0, nil
}

type fakeRequestRepo struct {
	pending  []*domain.PayoutRequest
	statuses map[string]domain.PayoutStatus
}

func newFakeRequestRepo(pending ...*domain.PayoutRequest) *fakeRequestRepo {
	statuses := map[string]domain.PayoutStatus{}
	for _, r := range pending {
		statuses[r.ID] = r.Status
	}
	return &fakeRequestRepo{pending: pending, statuses: statuses}
}

func (f *fakeRequestRepo) Create(r *domain.PayoutRequest) error { return nil }

func (f *fakeRequestRepo) GetByID(id string) (*domain.PayoutRequest, error) {
	for _, r := range f.pending {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrPayoutNotFound
}

func (f *fakeRequestRepo) UpdateStatus(id string, from, to domain.PayoutStatus, note string) error {
	if f.statuses[id] != from {
		return domain.ErrInvalidTransition
	}
	f.statuses[id] = to
	return nil
}

func (f *fakeRequestRepo) ListPending(limit int) ([]*domain.PayoutRequest, error) {
	var out []*domain.PayoutRequest
	for _, r := range f.pending {
		if f.statuses[r.ID] == domain.PayoutPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListStuck(cutoff time.Time) ([]*domain.PayoutRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) CountByStatus(status domain.PayoutStatus) (int64, error) {
	return 0, nil
}

type fakeProfileRepo struct {
	profiles map[string]*domain.UserProfile
}

func (f *fakeProfileRepo) GetByUserID(userID string) (*domain.UserProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("user profile %s: not found", userID)
	}
	return p, nil
}

type fakeSettings struct {
	autoDisbursement bool
}

func (f *fakeSettings) GetBool(key string, fallback bool) (bool, error) {
	return f.autoDisbursement, nil
}

func (f *fakeSettings) SetBool(key string, value bool) error {
	f.autoDisbursement = value
	return nil
}

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

type fakeSender struct {
	sent []sender.SendRequest
	err  error
}

func (f *fakeSender) Send(req sender.SendRequest) (*sender.SendResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, req)
	return &sender.SendResult{TransactionID: fmt.Sprintf("txn-%d", len(f.sent))}, nil
}

type testEnv struct {
	commissions *fakeCommissionRepo
	requests    *fakeRequestRepo
	profiles    *fakeProfileRepo
	settings    *fakeSettings
	float       *fakeFloatRepo
	sender      *fakeSender
	events      *logger.MemoryEventLogger
	runner      *Runner
}

func newTestEnv(floatMinor int64) *testEnv {
	env := &testEnv{
		commissions: &fakeCommissionRepo{byUser: map[string][]*domain.Commission{}},
		requests:    newFakeRequestRepo(),
		profiles:    &fakeProfileRepo{profiles: map[string]*domain.UserProfile{}},
		settings:    &fakeSettings{autoDisbursement: true},
		float:       &fakeFloatRepo{balance: floatMinor},
		sender:      &fakeSender{},
		events:      &logger.MemoryEventLogger{},
	}
	gate := eligibility.NewGate(eligibility.Config{
		MinTrustScore: 50,
		HoneymoonDays: 30,
	}, env.float, env.events)
	env.runner = NewRunner(
		env.commissions, env.requests, env.profiles, env.settings, gate,
		env.sender, env.events, testMetrics, nil, "payout-events", "PHP")
	return env
}

func goodProfile() *domain.UserProfile {
	return &domain.UserProfile{TrustScore: 90, SignupAt: time.Now().UTC().AddDate(0, -6, 0)}
}

func approvedCommission(id, userID string, amountMinor int64) *domain.Commission {
	return &domain.Commission{
		ID:          id,
		UserID:      userID,
		AmountMinor: amountMinor,
		Currency:    "PHP",
		Status:      domain.CommissionApproved,
	}
}

func TestRunPaysClearedCommissions(t *testing.T) {
	env := newTestEnv(0)
	env.commissions.disbursable = []*domain.Commission{
		approvedCommission("c1", "u1", 4000),
		approvedCommission("c2", "u2", 2500),
	}

	result, err := env.runner.Run(RunParams{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.PaidCount != 2 || result.TotalPaidMinor != 6500 {
		t.Fatalf("paid=%d total=%d, want 2/6500", result.PaidCount, result.TotalPaidMinor)
	}
	if len(env.sender.sent) != 2 {
		t.Errorf("sender calls = %d, want 2", len(env.sender.sent))
	}
	if len(env.commissions.paid) != 2 {
		t.Errorf("MarkPaid calls = %d, want 2", len(env.commissions.paid))
	}
}

func TestRunHaltedByOpsFlag(t *testing.T) {
	env := newTestEnv(0)
	env.settings.autoDisbursement = false
	env.commissions.disbursable = []*domain.Commission{approvedCommission("c1", "u1", 4000)}

	result, err := env.runner.Run(RunParams{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Halted {
		t.Fatal("expected halted run")
	}
	if len(env.sender.sent) != 0 {
		t.Errorf("halted run sent %d payments", len(env.sender.sent))
	}

	// Force is the manual override for an admin-triggered run.
	result, err = env.runner.Run(RunParams{Force: true})
	if err != nil {
		t.Fatalf("forced Run: %v", err)
	}
	if result.Halted || result.PaidCount != 1 {
		t.Fatalf("forced run: halted=%v paid=%d", result.Halted, result.PaidCount)
	}
}

func TestRunDryRunHasNoSideEffects(t *testing.T) {
	env := newTestEnv(1_000_000)
	env.commissions.disbursable = []*domain.Commission{approvedCommission("c1", "u1", 4000)}
	env.requests = newFakeRequestRepo(&domain.PayoutRequest{
		ID: "r1", UserID: "u2", AmountMinor: 3000, Status: domain.PayoutPending,
	})
	env.profiles.profiles["u2"] = goodProfile()
	env.runner.Requests = env.requests

	result, err := env.runner.Run(RunParams{DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.DryRun || result.PaidCount != 0 {
		t.Fatalf("dry run result: %+v", result)
	}
	for _, item := range result.Items {
		if item.Outcome != OutcomePreview {
			t.Errorf("item %s outcome = %s, want preview", item.ID, item.Outcome)
		}
	}
	if len(env.sender.sent) != 0 {
		t.Errorf("dry run sent %d payments", len(env.sender.sent))
	}
	if len(env.commissions.paid) != 0 || len(env.commissions.settled) != 0 {
		t.Error("dry run wrote ledger state")
	}
	if env.requests.statuses["r1"] != domain.PayoutPending {
		t.Errorf("dry run moved request to %s", env.requests.statuses["r1"])
	}
	if len(env.events.Entries) != 0 {
		t.Errorf("dry run wrote %d audit entries", len(env.events.Entries))
	}
}

func TestRunSenderFailureLeavesCommissionApproved(t *testing.T) {
	env := newTestEnv(0)
	env.sender.err = errors.New("provider 502")
	c := approvedCommission("c1", "u1", 4000)
	env.commissions.disbursable = []*domain.Commission{c}

	result, err := env.runner.Run(RunParams{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.PaidCount != 0 {
		t.Fatalf("paid = %d after sender failure", result.PaidCount)
	}
	if result.Items[0].Outcome != OutcomeError {
		t.Errorf("outcome = %s, want error", result.Items[0].Outcome)
	}
	if c.Status != domain.CommissionApproved || c.PaidOut {
		t.Errorf("commission mutated after sender failure: %+v", c)
	}
}

func TestRunConcurrentAlreadyPaidIsSkip(t *testing.T) {
	env := newTestEnv(0)
	env.commissions.markPaidErr = domain.ErrAlreadyPaid
	env.commissions.disbursable = []*domain.Commission{approvedCommission("c1", "u1", 4000)}

	result, err := env.runner.Run(RunParams{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	item := result.Items[0]
	if item.Outcome != OutcomeSkipped || item.Reason != string(domain.RejectAlreadyPaid) {
		t.Fatalf("item = %+v, want ALREADY_PAID skip", item)
	}
	if result.PaidCount != 0 {
		t.Errorf("paid = %d, want 0", result.PaidCount)
	}
}

func TestRunEarlyRequestSettlesCoveringLegs(t *testing.T) {
	env := newTestEnv(1_000_000)
	env.requests = newFakeRequestRepo(&domain.PayoutRequest{
		ID: "r1", UserID: "u1", AmountMinor: 7000, Status: domain.PayoutPending,
		Method: domain.PayoutMethodGcash, WalletNumber: "09171234567",
	})
	env.runner.Requests = env.requests
	env.profiles.profiles["u1"] = goodProfile()
	env.commissions.byUser["u1"] = []*domain.Commission{
		approvedCommission("a1", "u1", 3000),
		approvedCommission("a2", "u1", 3000),
		approvedCommission("a3", "u1", 3000),
	}

	result, err := env.runner.Run(RunParams{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.PaidCount != 1 {
		t.Fatalf("paid = %d, want 1", result.PaidCount)
	}
	item := result.Items[0]
	// Whole legs only: 3000+3000 fits inside 7000, the third leg does not.
	if item.AmountMinor != 6000 {
		t.Errorf("disbursed = %d, want 6000", item.AmountMinor)
	}
	if item.Reason == "" {
		t.Error("partial fulfilment should carry an explanatory reason")
	}
	if len(env.commissions.settled) != 1 || len(env.commissions.settled[0]) != 2 {
		t.Fatalf("settled legs = %+v, want one settlement of 2 legs", env.commissions.settled)
	}
	if env.commissions.settledFloat != 6000 {
		t.Errorf("float delta = %d, want 6000", env.commissions.settledFloat)
	}
	if len(env.sender.sent) != 1 || env.sender.sent[0].Destination != "09171234567" {
		t.Errorf("sender calls = %+v", env.sender.sent)
	}
}

func TestRunEarlyRequestFailsWhenBalanceRacedAway(t *testing.T) {
	env := newTestEnv(1_000_000)
	env.requests = newFakeRequestRepo(&domain.PayoutRequest{
		ID: "r1", UserID: "u1", AmountMinor: 5000, Status: domain.PayoutPending,
	})
	env.runner.Requests = env.requests
	env.profiles.profiles["u1"] = goodProfile()
	// No approved-unpaid legs left for the user.

	result, err := env.runner.Run(RunParams{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	item := result.Items[0]
	if item.Outcome != OutcomeRejected || item.Reason != "insufficient_approved_balance" {
		t.Fatalf("item = %+v", item)
	}
	if env.requests.statuses["r1"] != domain.PayoutFailed {
		t.Errorf("request status = %s, want FAILED", env.requests.statuses["r1"])
	}
	if len(env.sender.sent) != 0 {
		t.Error("sender called for an uncoverable request")
	}
}

func TestRunInsufficientFloatRejectsAllEarlyOnly(t *testing.T) {
	env := newTestEnv(4000)
	env.commissions.disbursable = []*domain.Commission{approvedCommission("c1", "u9", 90000)}
	env.requests = newFakeRequestRepo(
		&domain.PayoutRequest{ID: "r1", UserID: "u1", AmountMinor: 3000, Status: domain.PayoutPending},
		&domain.PayoutRequest{ID: "r2", UserID: "u2", AmountMinor: 3000, Status: domain.PayoutPending},
	)
	env.runner.Requests = env.requests
	env.profiles.profiles["u1"] = goodProfile()
	env.profiles.profiles["u2"] = goodProfile()

	result, err := env.runner.Run(RunParams{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, item := range result.Items {
		switch item.Kind {
		case "payout_request":
			if item.Outcome != OutcomeRejected || item.Reason != string(domain.RejectInsufficientFloat) {
				t.Errorf("early item %s = %+v, want INSUFFICIENT_FLOAT rejection", item.ID, item)
			}
		case "commission":
			if item.Outcome != OutcomePaid {
				t.Errorf("standard item outcome = %s, want paid", item.Outcome)
			}
		}
	}
	if len(env.commissions.settled) != 0 {
		t.Error("settlement ran despite float rejection")
	}
	// Requests stay PENDING for a future run with replenished float.
	if env.requests.statuses["r1"] != domain.PayoutPending || env.requests.statuses["r2"] != domain.PayoutPending {
		t.Errorf("request statuses = %+v", env.requests.statuses)
	}
}

func TestRunBatchSizeClamped(t *testing.T) {
	env := newTestEnv(0)
	for i := 0; i < MaxBatchSize+50; i++ {
		env.commissions.disbursable = append(env.commissions.disbursable,
			approvedCommission(fmt.Sprintf("c%d", i), "u1", 100))
	}

	result, err := env.runner.Run(RunParams{BatchSize: MaxBatchSize + 50})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Items) != MaxBatchSize {
		t.Fatalf("items = %d, want clamp to %d", len(result.Items), MaxBatchSize)
	}
}
