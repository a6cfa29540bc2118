package repository

import (
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/mappers"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultEventLogRepository struct {
	DB *gorm.DB
}

func NewDefaultEventLogRepository(db *gorm.DB) *DefaultEventLogRepository {
	return &DefaultEventLogRepository{DB: db}
}

func (r *DefaultEventLogRepository) Append(entry *domain.EventLog) error {
	model := mappers.ToGORMEventLog(entry)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}
	if err := r.DB.Create(model).Error; err != nil {
		return err
	}
	entry.ID = model.ID
	return nil
}

func (r *DefaultEventLogRepository) CountSince(severity domain.EventSeverity, since time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&models.EventLogModel{}).
		Where("severity = ?", severity).
		Where("created_at > ?", since).
		Count(&count).Error
	return count, err
}

func (r *DefaultEventLogRepository) TrimBefore(cutoff time.Time) (int64, error) {
	result := r.DB.
		Where("created_at < ?", cutoff).
		Delete(&models.EventLogModel{})
	return result.RowsAffected, result.Error
}
