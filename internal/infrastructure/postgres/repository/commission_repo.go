package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/mappers"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultCommissionRepository struct {
	DB *gorm.DB
}

func NewDefaultCommissionRepository(db *gorm.DB) *DefaultCommissionRepository {
	return &DefaultCommissionRepository{DB: db}
}

func (r *DefaultCommissionRepository) Create(commission *domain.Commission) error {
	model := mappers.ToGORMCommission(commission)
	if err := r.DB.Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *DefaultCommissionRepository) GetByID(id string) (*domain.Commission, error) {
	var model models.CommissionModel
	if err := r.DB.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommissionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainCommission(&model), nil
}

func (r *DefaultCommissionRepository) GetByIdempotencyKey(key string) (*domain.Commission, error) {
	var model models.CommissionModel
	if err := r.DB.First(&model, "idempotency_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mappers.ToDomainCommission(&model), nil
}

func (r *DefaultCommissionRepository) Approve(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		model, err := lockCommission(tx, id)
		if err != nil {
			return err
		}
		if model.Status == domain.CommissionPaid || model.PaidOut {
			return domain.ErrAlreadyPaid
		}
		if model.Status != domain.CommissionPending {
			return domain.ErrInvalidTransition
		}
		return tx.Model(model).Updates(map[string]interface{}{
			"status":     domain.CommissionApproved,
			"updated_at": time.Now(),
		}).Error
	})
}

func (r *DefaultCommissionRepository) Fail(id, reason string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		model, err := lockCommission(tx, id)
		if err != nil {
			return err
		}
		if model.Status == domain.CommissionPaid || model.PaidOut {
			return domain.ErrAlreadyPaid
		}
		if model.Status != domain.CommissionPending && model.Status != domain.CommissionApproved {
			return domain.ErrInvalidTransition
		}
		return tx.Model(model).Updates(map[string]interface{}{
			"status":      domain.CommissionFailed,
			"fail_reason": reason,
			"updated_at":  time.Now(),
		}).Error
	})
}

// MarkPaid is the single commit point for a standard disbursement: terminal
// recheck, optional float decrement, ledger flip and audit row all land in
// one transaction or not at all.
func (r *DefaultCommissionRepository) MarkPaid(id, externalTxnID string, floatDeltaMinor int64) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		model, err := lockCommission(tx, id)
		if err != nil {
			return err
		}
		if model.Status == domain.CommissionPaid || model.PaidOut {
			return domain.ErrAlreadyPaid
		}
		if model.Status != domain.CommissionApproved {
			return domain.ErrInvalidTransition
		}
		if err := decrementFloat(tx, floatDeltaMinor); err != nil {
			return err
		}
		if err := tx.Model(model).Updates(map[string]interface{}{
			"status":          domain.CommissionPaid,
			"paid_out":        true,
			"external_txn_id": externalTxnID,
			"updated_at":      time.Now(),
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.EventLogModel{
			Type:      "commission_paid",
			Severity:  domain.SeverityInfo,
			Message:   "commission disbursed",
			Detail:    fmt.Sprintf("commission=%s user=%s amount_minor=%d txn=%s", model.ID, model.UserID, model.AmountMinor, externalTxnID),
			CreatedAt: time.Now(),
		}).Error
	})
}

func (r *DefaultCommissionRepository) ListDisbursable(now time.Time, limit int) ([]*domain.Commission, error) {
	var commissionModels []models.CommissionModel
	err := r.DB.
		Where("status = ?", domain.CommissionApproved).
		Where("paid_out = ?", false).
		Where("payout_request_id = ?", "").
		Where("hold_until <= ?", now).
		Order("created_at ASC").
		Limit(limit).
		Find(&commissionModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainCommissions(commissionModels), nil
}

func (r *DefaultCommissionRepository) ListApprovedUnpaidByUser(userID string) ([]*domain.Commission, error) {
	var commissionModels []models.CommissionModel
	err := r.DB.
		Where("user_id = ?", userID).
		Where("status = ?", domain.CommissionApproved).
		Where("paid_out = ?", false).
		Where("payout_request_id = ?", "").
		Order("created_at ASC").
		Find(&commissionModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainCommissions(commissionModels), nil
}

func (r *DefaultCommissionRepository) ApprovedUnpaidTotal(userID string) (int64, error) {
	var total int64
	err := r.DB.Model(&models.CommissionModel{}).
		Where("user_id = ?", userID).
		Where("status = ?", domain.CommissionApproved).
		Where("paid_out = ?", false).
		Where("payout_request_id = ?", "").
		Select("COALESCE(SUM(amount_minor), 0)").
		Scan(&total).Error
	return total, err
}

// SettlePayoutRequest flips the covering legs and the request together. The
// payout_request_id stamp is what keeps a replayed settlement from picking
// the same legs twice.
func (r *DefaultCommissionRepository) SettlePayoutRequest(requestID, externalTxnID string, commissionIDs []string, floatDeltaMinor int64) error {
	if len(commissionIDs) == 0 {
		return fmt.Errorf("settle %s: no commissions to settle", requestID)
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var legs []models.CommissionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", commissionIDs).
			Find(&legs).Error; err != nil {
			return err
		}
		if len(legs) != len(commissionIDs) {
			return domain.ErrCommissionNotFound
		}
		for _, leg := range legs {
			if leg.Status == domain.CommissionPaid || leg.PaidOut {
				return domain.ErrAlreadyPaid
			}
			if leg.Status != domain.CommissionApproved {
				return domain.ErrInvalidTransition
			}
		}

		if err := decrementFloat(tx, floatDeltaMinor); err != nil {
			return err
		}

		if err := tx.Model(&models.CommissionModel{}).
			Where("id IN ?", commissionIDs).
			Updates(map[string]interface{}{
				"status":            domain.CommissionPaid,
				"paid_out":          true,
				"external_txn_id":   externalTxnID,
				"payout_request_id": requestID,
				"updated_at":        time.Now(),
			}).Error; err != nil {
			return err
		}

		now := time.Now()
		result := tx.Model(&models.PayoutRequestModel{}).
			Where("id = ?", requestID).
			Where("status = ?", domain.PayoutProcessing).
			Updates(map[string]interface{}{
				"status":       domain.PayoutPaid,
				"processed_at": &now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrInvalidTransition
		}

		return tx.Create(&models.EventLogModel{
			Type:      "payout_request_settled",
			Severity:  domain.SeverityInfo,
			Message:   "payout request settled",
			Detail:    fmt.Sprintf("request=%s legs=%d float_delta_minor=%d txn=%s", requestID, len(commissionIDs), floatDeltaMinor, externalTxnID),
			CreatedAt: now,
		}).Error
	})
}

func (r *DefaultCommissionRepository) CountByStatus(status domain.CommissionStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&models.CommissionModel{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *DefaultCommissionRepository) GetCommissions(filters domain.CommissionFilters, page, limit int64) ([]*domain.Commission, int64, error) {
	var commissionModels []models.CommissionModel
	var total int64

	query := r.DB.Model(&models.CommissionModel{})
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if len(filters.Statuses) > 0 {
		query = query.Where("status IN (?)", filters.Statuses)
	}
	if !filters.DateFrom.IsZero() {
		query = query.Where("created_at >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		query = query.Where("created_at <= ?", filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.
		Order("created_at DESC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&commissionModels).Error
	if err != nil {
		return nil, 0, err
	}
	return toDomainCommissions(commissionModels), total, nil
}

func lockCommission(tx *gorm.DB, id string) (*models.CommissionModel, error) {
	var model models.CommissionModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommissionNotFound
		}
		return nil, err
	}
	return &model, nil
}

// decrementFloat applies a guarded reserve decrement. A delta of zero is the
// standard-path no-op.
func decrementFloat(tx *gorm.DB, deltaMinor int64) error {
	if deltaMinor == 0 {
		return nil
	}
	result := tx.Model(&models.FloatBalanceModel{}).
		Where("id = ?", 1).
		Where("balance_minor >= ?", deltaMinor).
		Updates(map[string]interface{}{
			"balance_minor": gorm.Expr("balance_minor - ?", deltaMinor),
			"version":       gorm.Expr("version + 1"),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInsufficientFloat
	}
	return nil
}

func toDomainCommissions(commissionModels []models.CommissionModel) []*domain.Commission {
	commissions := make([]*domain.Commission, 0, len(commissionModels))
	for i := range commissionModels {
		commissions = append(commissions, mappers.ToDomainCommission(&commissionModels[i]))
	}
	return commissions
}
