package mappers

import (
	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/models"
)

func ToDomainCommission(model *models.CommissionModel) *domain.Commission {
	return &domain.Commission{
		ID:              model.ID,
		UserID:          model.UserID,
		AmountMinor:     model.AmountMinor,
		Currency:        model.Currency,
		Status:          model.Status,
		PaidOut:         model.PaidOut,
		Source:          model.Source,
		Type:            model.Type,
		IdempotencyKey:  model.IdempotencyKey,
		MerchantRuleID:  model.MerchantRuleID,
		ExternalOrderID: model.ExternalOrderID,
		PayoutRequestID: model.PayoutRequestID,
		ExternalTxnID:   model.ExternalTxnID,
		FailReason:      model.FailReason,
		HoldUntil:       model.HoldUntil,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func ToGORMCommission(commission *domain.Commission) *models.CommissionModel {
	return &models.CommissionModel{
		ID:              commission.ID,
		UserID:          commission.UserID,
		AmountMinor:     commission.AmountMinor,
		Currency:        commission.Currency,
		Status:          commission.Status,
		PaidOut:         commission.PaidOut,
		Source:          commission.Source,
		Type:            commission.Type,
		IdempotencyKey:  commission.IdempotencyKey,
		MerchantRuleID:  commission.MerchantRuleID,
		ExternalOrderID: commission.ExternalOrderID,
		PayoutRequestID: commission.PayoutRequestID,
		ExternalTxnID:   commission.ExternalTxnID,
		FailReason:      commission.FailReason,
		HoldUntil:       commission.HoldUntil,
		CreatedAt:       commission.CreatedAt,
		UpdatedAt:       commission.UpdatedAt,
	}
}
