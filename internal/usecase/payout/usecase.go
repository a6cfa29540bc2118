package payout

import (
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/logger"
	"github.com/begintolern/linkmint-core/internal/infrastructure/metrics"
	"github.com/go-playground/validator/v10"
)

type PayoutUsecase interface {
	Submit(input *SubmitInput) (*domain.PayoutRequest, error)
	MarkProcessing(id string, actor domain.Actor, note string) error
	Deny(id string, actor domain.Actor, note string) error
	GetByID(id string) (*domain.PayoutRequest, error)
}

type DefaultPayoutUsecase struct {
	Requests    domain.PayoutRequestRepository
	Commissions domain.CommissionRepository
	Events      logger.EventLogger
	Metrics     *metrics.PayoutMetrics
	Validate    *validator.Validate
	Now         func() time.Time
}

func NewDefaultPayoutUsecase(
	requestRepo domain.PayoutRequestRepository,
	commissionRepo domain.CommissionRepository,
	events logger.EventLogger,
	payoutMetrics *metrics.PayoutMetrics) *DefaultPayoutUsecase {

	return &DefaultPayoutUsecase{
		Requests:    requestRepo,
		Commissions: commissionRepo,
		Events:      events,
		Metrics:     payoutMetrics,
		Validate:    validator.New(),
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

func (uc *DefaultPayoutUsecase) GetByID(id string) (*domain.PayoutRequest, error) {
	return uc.Requests.GetByID(id)
}
