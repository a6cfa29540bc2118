package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/mappers"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

const floatRowID = 1

type DefaultFloatRepository struct {
	DB *gorm.DB
}

func NewDefaultFloatRepository(db *gorm.DB) *DefaultFloatRepository {
	return &DefaultFloatRepository{DB: db}
}

func (r *DefaultFloatRepository) Get() (*domain.FloatBalance, error) {
	var model models.FloatBalanceModel
	if err := r.DB.First(&model, "id = ?", floatRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.FloatBalance{ID: floatRowID}, nil
		}
		return nil, err
	}
	return mappers.ToDomainFloatBalance(&model), nil
}

func (r *DefaultFloatRepository) TopUp(amountMinor int64, note string) error {
	if amountMinor <= 0 {
		return fmt.Errorf("top-up amount must be positive, got %d", amountMinor)
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.FloatBalanceModel{}).
			Where("id = ?", floatRowID).
			Updates(map[string]interface{}{
				"balance_minor": gorm.Expr("balance_minor + ?", amountMinor),
				"version":       gorm.Expr("version + 1"),
				"updated_at":    time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if err := tx.Create(&models.FloatBalanceModel{
				ID:           floatRowID,
				BalanceMinor: amountMinor,
				Version:      1,
				UpdatedAt:    time.Now(),
			}).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.EventLogModel{
			Type:      "float_topup",
			Severity:  domain.SeverityInfo,
			Message:   "float reserve credited",
			Detail:    fmt.Sprintf("amount_minor=%d note=%s", amountMinor, note),
			CreatedAt: time.Now(),
		}).Error
	})
}
