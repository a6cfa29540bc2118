package mappers

import (
	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/models"
)

func ToDomainPayoutRequest(model *models.PayoutRequestModel) *domain.PayoutRequest {
	return &domain.PayoutRequest{
		ID:            model.ID,
		UserID:        model.UserID,
		AmountMinor:   model.AmountMinor,
		Method:        model.Method,
		Provider:      model.Provider,
		WalletNumber:  model.WalletNumber,
		BankName:      model.BankName,
		BankAccount:   model.BankAccount,
		Status:        model.Status,
		ProcessorNote: model.ProcessorNote,
		RequestedAt:   model.RequestedAt,
		ProcessedAt:   model.ProcessedAt,
	}
}

func ToGORMPayoutRequest(request *domain.PayoutRequest) *models.PayoutRequestModel {
	return &models.PayoutRequestModel{
		ID:            request.ID,
		UserID:        request.UserID,
		AmountMinor:   request.AmountMinor,
		Method:        request.Method,
		Provider:      request.Provider,
		WalletNumber:  request.WalletNumber,
		BankName:      request.BankName,
		BankAccount:   request.BankAccount,
		Status:        request.Status,
		ProcessorNote: request.ProcessorNote,
		RequestedAt:   request.RequestedAt,
		ProcessedAt:   request.ProcessedAt,
	}
}
