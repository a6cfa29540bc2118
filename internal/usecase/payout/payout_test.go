package payout

import (
	"errors"
	"testing"
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/logger"
	"github.com/begintolern/linkmint-core/internal/infrastructure/metrics"
	"github.com/go-playground/validator/v10"
)

var testMetrics = metrics.NewPayoutMetrics()

type fakeRequestRepo struct {
	requests map[string]*domain.PayoutRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]*domain.PayoutRequest{}}
}

func (f *fakeRequestRepo) Create(r *domain.PayoutRequest) error {
	f.requests[r.ID] = r
	return nil
}

func (f *fakeRequestRepo) GetByID(id string) (*domain.PayoutRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, domain.ErrPayoutNotFound
	}
	return r, nil
}

func (f *fakeRequestRepo) UpdateStatus(id string, from, to domain.PayoutStatus, note string) error {
	r, ok := f.requests[id]
	if !ok || r.Status != from {
		return domain.ErrInvalidTransition
	}
	r.Status = to
	r.ProcessorNote = note
	return nil
}

func (f *fakeRequestRepo) ListPending(limit int) ([]*domain.PayoutRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) ListStuck(cutoff time.Time) ([]*domain.PayoutRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) CountByStatus(status domain.PayoutStatus) (int64, error) {
	return 0, nil
}

// balanceOnlyCommissionRepo satisfies the repository interface for the
// submit path, which only reads the approved-unpaid total.
type balanceOnlyCommissionRepo struct {
	domain.CommissionRepository
	total int64
}

func (f *balanceOnlyCommissionRepo) ApprovedUnpaidTotal(userID string) (int64, error) {
	return f.total, nil
}

func newPayoutUsecase(requests *fakeRequestRepo, availableMinor int64) *DefaultPayoutUsecase {
	return &DefaultPayoutUsecase{
		Requests:    requests,
		Commissions: &balanceOnlyCommissionRepo{total: availableMinor},
		Events:      &logger.MemoryEventLogger{},
		Metrics:     testMetrics,
		Validate:    validator.New(),
		Now:         func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) },
	}
}

func validSubmit() *SubmitInput {
	return &SubmitInput{
		UserID:       "user-1",
		AmountMinor:  5000,
		Method:       "GCASH",
		WalletNumber: "09171234567",
	}
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	requests := newFakeRequestRepo()
	uc := newPayoutUsecase(requests, 10000)

	request, err := uc.Submit(validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if request.Status != domain.PayoutPending {
		t.Errorf("status = %s, want PENDING", request.Status)
	}
	if request.ID == "" {
		t.Error("request ID not assigned")
	}
	if _, ok := requests.requests[request.ID]; !ok {
		t.Error("request not persisted")
	}
}

func TestSubmitRejectsOverWithdrawal(t *testing.T) {
	uc := newPayoutUsecase(newFakeRequestRepo(), 4999)

	_, err := uc.Submit(validSubmit())
	if !errors.Is(err, domain.ErrAmountExceedsTotal) {
		t.Fatalf("got %v, want ErrAmountExceedsTotal", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"zero amount", func(in *SubmitInput) { in.AmountMinor = 0 }},
		{"negative amount", func(in *SubmitInput) { in.AmountMinor = -100 }},
		{"unknown method", func(in *SubmitInput) { in.Method = "PAYPAL" }},
		{"bad wallet number", func(in *SubmitInput) { in.WalletNumber = "12345" }},
		{"short wallet number", func(in *SubmitInput) { in.WalletNumber = "0917123" }},
		{"bank without account", func(in *SubmitInput) {
			in.Method = "BANK"
			in.BankName = "BDO"
			in.BankAccount = ""
		}},
		{"missing user", func(in *SubmitInput) { in.UserID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validSubmit()
			tc.mutate(in)
			if _, err := newPayoutUsecase(newFakeRequestRepo(), 100000).Submit(in); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestSubmitBankMethod(t *testing.T) {
	uc := newPayoutUsecase(newFakeRequestRepo(), 100000)

	request, err := uc.Submit(&SubmitInput{
		UserID:      "user-1",
		AmountMinor: 5000,
		Method:      "BANK",
		BankName:    "BPI",
		BankAccount: "1234567890",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if request.Destination() != "BPI:1234567890" {
		t.Errorf("destination = %s", request.Destination())
	}
}

func TestTransitionLifecycle(t *testing.T) {
	requests := newFakeRequestRepo()
	uc := newPayoutUsecase(requests, 100000)
	admin := domain.Actor{UserID: "admin-1", Role: "ADMIN"}

	request, err := uc.Submit(validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := uc.MarkProcessing(request.ID, admin, "manual review ok"); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if requests.requests[request.ID].Status != domain.PayoutProcessing {
		t.Errorf("status = %s, want PROCESSING", requests.requests[request.ID].Status)
	}

	// PROCESSING -> PROCESSING is not an edge.
	if err := uc.MarkProcessing(request.ID, admin, ""); err == nil {
		t.Error("repeated MarkProcessing should fail")
	}

	if err := uc.Deny(request.ID, admin, "sender flagged account"); err != nil {
		t.Fatalf("Deny from PROCESSING: %v", err)
	}
	if requests.requests[request.ID].Status != domain.PayoutFailed {
		t.Errorf("status = %s, want FAILED", requests.requests[request.ID].Status)
	}
}

func TestPaidIsTerminal(t *testing.T) {
	requests := newFakeRequestRepo()
	requests.requests["req-1"] = &domain.PayoutRequest{ID: "req-1", UserID: "u1", Status: domain.PayoutPaid}
	uc := newPayoutUsecase(requests, 0)
	admin := domain.Actor{UserID: "admin-1", Role: "ADMIN"}

	if err := uc.Deny("req-1", admin, "oops"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("Deny on PAID: got %v, want ErrInvalidTransition", err)
	}
	if err := uc.MarkProcessing("req-1", admin, ""); err == nil {
		t.Fatal("MarkProcessing on PAID should fail")
	}
}

func TestTransitionsRequireAuthorization(t *testing.T) {
	requests := newFakeRequestRepo()
	requests.requests["req-1"] = &domain.PayoutRequest{ID: "req-1", UserID: "u1", Status: domain.PayoutPending}
	uc := newPayoutUsecase(requests, 0)
	user := domain.Actor{UserID: "u1", Role: "USER"}

	if err := uc.MarkProcessing("req-1", user, ""); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("MarkProcessing by user: got %v, want ErrNotAuthorized", err)
	}
	if err := uc.Deny("req-1", user, ""); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("Deny by user: got %v, want ErrNotAuthorized", err)
	}
}
