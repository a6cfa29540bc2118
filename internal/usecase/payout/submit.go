package payout

import (
	"fmt"
	"regexp"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/google/uuid"
)

// Philippine mobile-wallet numbers: 09 plus nine digits.
var walletNumberPattern = regexp.MustCompile(`^09\d{9}$`)

// SubmitInput carries the user-supplied payout request fields.
type SubmitInput struct {
	UserID       string `validate:"required"`
	AmountMinor  int64  `validate:"required,gt=0"`
	Method       string `validate:"required,oneof=GCASH MAYA BANK"`
	Provider     string
	WalletNumber string
	BankName     string
	BankAccount  string
}

// Submit validates and persists a new payout request in PENDING. The
// approved-unpaid ceiling is computed with a fresh query at submission
// time; a cached balance would let two racing submissions over-withdraw.
func (uc *DefaultPayoutUsecase) Submit(input *SubmitInput) (*domain.PayoutRequest, error) {
	if err := uc.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid payout request: %w", err)
	}

	method := domain.PayoutMethod(input.Method)
	if err := validateMethodFields(method, input); err != nil {
		return nil, err
	}

	available, err := uc.Commissions.ApprovedUnpaidTotal(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("computing approved-unpaid total: %w", err)
	}
	if input.AmountMinor > available {
		uc.Events.Log(&domain.EventLog{
			Type:     "payout_request_rejected",
			Severity: domain.SeverityWarn,
			Message:  domain.ErrAmountExceedsTotal.Error(),
			Detail: fmt.Sprintf("user=%s requested=%d available=%d",
				input.UserID, input.AmountMinor, available),
		})
		return nil, domain.ErrAmountExceedsTotal
	}

	request := &domain.PayoutRequest{
		ID:           uuid.NewString(),
		UserID:       input.UserID,
		AmountMinor:  input.AmountMinor,
		Method:       method,
		Provider:     input.Provider,
		WalletNumber: input.WalletNumber,
		BankName:     input.BankName,
		BankAccount:  input.BankAccount,
		Status:       domain.PayoutPending,
		RequestedAt:  uc.Now(),
	}
	if err := uc.Requests.Create(request); err != nil {
		return nil, fmt.Errorf("creating payout request: %w", err)
	}

	uc.Events.Log(&domain.EventLog{
		Type:     "payout_request_submitted",
		Severity: domain.SeverityInfo,
		Message:  fmt.Sprintf("payout request %s submitted", request.ID),
		Detail: fmt.Sprintf("user=%s amount=%d method=%s",
			request.UserID, request.AmountMinor, request.Method),
	})
	uc.Metrics.RecordPayoutRequest("submitted")

	return request, nil
}

func validateMethodFields(method domain.PayoutMethod, input *SubmitInput) error {
	switch method {
	case domain.PayoutMethodGcash, domain.PayoutMethodMaya:
		if !walletNumberPattern.MatchString(input.WalletNumber) {
			return fmt.Errorf("invalid payout request: wallet number %q must match 09xxxxxxxxx", input.WalletNumber)
		}
	case domain.PayoutMethodBank:
		if input.BankName == "" || input.BankAccount == "" {
			return fmt.Errorf("invalid payout request: bank payouts require bank name and account number")
		}
	}
	return nil
}
