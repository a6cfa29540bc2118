package commission

import (
	"time"

	"github.com/begintolern/linkmint-core/internal/attribution"
	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/logger"
	"github.com/begintolern/linkmint-core/internal/infrastructure/metrics"
)

type CommissionUsecase interface {
	Ingest(input *OrderEventInput) (*IngestResult, error)

	Approve(id string, actor domain.Actor, note string) error
	MarkPaid(id, externalTxnID string, actor domain.Actor) error
	Fail(id, reason string, actor domain.Actor) error

	GetByID(id string) (*domain.Commission, error)
	ApprovedUnpaidTotal(userID string) (int64, error)
	GetCommissions(filters domain.CommissionFilters, page, limit int64) ([]*domain.Commission, int64, error)
}

type DefaultCommissionUsecase struct {
	Commissions domain.CommissionRepository
	Clicks      domain.ClickRepository
	Rules       domain.MerchantRuleRepository
	Referrals   domain.ReferralRepository
	Events      logger.EventLogger
	Metrics     *metrics.PayoutMetrics
	Shares      attribution.Shares
	Now         func() time.Time
}

func NewDefaultCommissionUsecase(
	commissionRepo domain.CommissionRepository,
	clickRepo domain.ClickRepository,
	ruleRepo domain.MerchantRuleRepository,
	referralRepo domain.ReferralRepository,
	events logger.EventLogger,
	payoutMetrics *metrics.PayoutMetrics,
	shares attribution.Shares) *DefaultCommissionUsecase {

	return &DefaultCommissionUsecase{
		Commissions: commissionRepo,
		Clicks:      clickRepo,
		Rules:       ruleRepo,
		Referrals:   referralRepo,
		Events:      events,
		Metrics:     payoutMetrics,
		Shares:      shares,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

func (uc *DefaultCommissionUsecase) GetByID(id string) (*domain.Commission, error) {
	return uc.Commissions.GetByID(id)
}

func (uc *DefaultCommissionUsecase) ApprovedUnpaidTotal(userID string) (int64, error) {
	return uc.Commissions.ApprovedUnpaidTotal(userID)
}

func (uc *DefaultCommissionUsecase) GetCommissions(filters domain.CommissionFilters, page, limit int64) ([]*domain.Commission, int64, error) {
	return uc.Commissions.GetCommissions(filters, page, limit)
}
