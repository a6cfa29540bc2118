package repository

import (
	"errors"
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/mappers"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPayoutRequestRepository struct {
	DB *gorm.DB
}

func NewDefaultPayoutRequestRepository(db *gorm.DB) *DefaultPayoutRequestRepository {
	return &DefaultPayoutRequestRepository{DB: db}
}

func (r *DefaultPayoutRequestRepository) Create(request *domain.PayoutRequest) error {
	model := mappers.ToGORMPayoutRequest(request)
	return r.DB.Create(model).Error
}

func (r *DefaultPayoutRequestRepository) GetByID(id string) (*domain.PayoutRequest, error) {
	var model models.PayoutRequestModel
	if err := r.DB.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPayoutNotFound
		}
		return nil, err
	}
	return mappers.ToDomainPayoutRequest(&model), nil
}

// UpdateStatus only touches the row when its current status matches from,
// which makes it safe to call from concurrent runners.
func (r *DefaultPayoutRequestRepository) UpdateStatus(id string, from, to domain.PayoutStatus, note string) error {
	updates := map[string]interface{}{
		"status": to,
	}
	if note != "" {
		updates["processor_note"] = note
	}
	if to == domain.PayoutPaid || to == domain.PayoutFailed {
		now := time.Now()
		updates["processed_at"] = &now
	}
	result := r.DB.Model(&models.PayoutRequestModel{}).
		Where("id = ?", id).
		Where("status = ?", from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *DefaultPayoutRequestRepository) ListPending(limit int) ([]*domain.PayoutRequest, error) {
	var requestModels []models.PayoutRequestModel
	err := r.DB.
		Where("status = ?", domain.PayoutPending).
		Order("requested_at ASC").
		Limit(limit).
		Find(&requestModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainPayoutRequests(requestModels), nil
}

func (r *DefaultPayoutRequestRepository) ListStuck(cutoff time.Time) ([]*domain.PayoutRequest, error) {
	var requestModels []models.PayoutRequestModel
	err := r.DB.
		Where("status IN ?", []domain.PayoutStatus{domain.PayoutPending, domain.PayoutProcessing}).
		Where("requested_at < ?", cutoff).
		Order("requested_at ASC").
		Find(&requestModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainPayoutRequests(requestModels), nil
}

func (r *DefaultPayoutRequestRepository) CountByStatus(status domain.PayoutStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&models.PayoutRequestModel{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func toDomainPayoutRequests(requestModels []models.PayoutRequestModel) []*domain.PayoutRequest {
	requests := make([]*domain.PayoutRequest, 0, len(requestModels))
	for i := range requestModels {
		requests = append(requests, mappers.ToDomainPayoutRequest(&requestModels[i]))
	}
	return requests
}
