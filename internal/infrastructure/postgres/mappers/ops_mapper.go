package mappers

import (
	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/models"
)

func ToDomainEventLog(model *models.EventLogModel) *domain.EventLog {
	return &domain.EventLog{
		ID:        model.ID,
		Type:      model.Type,
		Severity:  model.Severity,
		Message:   model.Message,
		Detail:    model.Detail,
		CreatedAt: model.CreatedAt,
	}
}

func ToGORMEventLog(entry *domain.EventLog) *models.EventLogModel {
	return &models.EventLogModel{
		ID:        entry.ID,
		Type:      entry.Type,
		Severity:  entry.Severity,
		Message:   entry.Message,
		Detail:    entry.Detail,
		CreatedAt: entry.CreatedAt,
	}
}

func ToDomainFloatBalance(model *models.FloatBalanceModel) *domain.FloatBalance {
	return &domain.FloatBalance{
		ID:           model.ID,
		BalanceMinor: model.BalanceMinor,
		Version:      model.Version,
		UpdatedAt:    model.UpdatedAt,
	}
}
