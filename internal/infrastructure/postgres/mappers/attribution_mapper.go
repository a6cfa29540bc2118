package mappers

import (
	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/models"
)

func ToDomainClick(model *models.ClickModel) *domain.Click {
	return &domain.Click{
		ID:         model.ID,
		UserID:     model.UserID,
		MerchantID: model.MerchantID,
		Source:     model.Source,
		CreatedAt:  model.CreatedAt,
	}
}

func ToDomainMerchantRule(model *models.MerchantRuleModel) *domain.MerchantRule {
	return &domain.MerchantRule{
		ID:               model.ID,
		Name:             model.Name,
		DomainPattern:    model.DomainPattern,
		CommissionType:   model.CommissionType,
		CommissionRate:   model.CommissionRate,
		CookieWindowDays: model.CookieWindowDays,
		PayoutDelayDays:  model.PayoutDelayDays,
		Active:           model.Active,
	}
}

func ToDomainReferralOverride(model *models.ReferralOverrideModel) *domain.ReferralOverride {
	return &domain.ReferralOverride{
		InviteeID:   model.InviteeID,
		ReferrerID:  model.ReferrerID,
		ActiveUntil: model.ActiveUntil,
	}
}

func ToDomainUserProfile(model *models.UserProfileModel) *domain.UserProfile {
	return &domain.UserProfile{
		UserID:      model.UserID,
		TrustScore:  model.TrustScore,
		AllowListed: model.AllowListed,
		SignupAt:    model.SignupAt,
	}
}
