package repository

import (
	"errors"
	"fmt"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/mappers"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

// The attribution inputs (clicks, merchant rules, referral overrides, user
// profiles) are written by other systems. These repositories are read-only.

type DefaultClickRepository struct {
	DB *gorm.DB
}

func NewDefaultClickRepository(db *gorm.DB) *DefaultClickRepository {
	return &DefaultClickRepository{DB: db}
}

func (r *DefaultClickRepository) GetByID(id string) (*domain.Click, error) {
	var model models.ClickModel
	if err := r.DB.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("click %s: %w", id, err)
		}
		return nil, err
	}
	return mappers.ToDomainClick(&model), nil
}

type DefaultMerchantRuleRepository struct {
	DB *gorm.DB
}

func NewDefaultMerchantRuleRepository(db *gorm.DB) *DefaultMerchantRuleRepository {
	return &DefaultMerchantRuleRepository{DB: db}
}

func (r *DefaultMerchantRuleRepository) GetByID(id string) (*domain.MerchantRule, error) {
	var model models.MerchantRuleModel
	if err := r.DB.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("merchant rule %s: %w", id, err)
		}
		return nil, err
	}
	return mappers.ToDomainMerchantRule(&model), nil
}

type DefaultReferralRepository struct {
	DB *gorm.DB
}

func NewDefaultReferralRepository(db *gorm.DB) *DefaultReferralRepository {
	return &DefaultReferralRepository{DB: db}
}

func (r *DefaultReferralRepository) GetOverrideByInvitee(inviteeID string) (*domain.ReferralOverride, error) {
	var model models.ReferralOverrideModel
	if err := r.DB.First(&model, "invitee_id = ?", inviteeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mappers.ToDomainReferralOverride(&model), nil
}

type DefaultUserProfileRepository struct {
	DB *gorm.DB
}

func NewDefaultUserProfileRepository(db *gorm.DB) *DefaultUserProfileRepository {
	return &DefaultUserProfileRepository{DB: db}
}

func (r *DefaultUserProfileRepository) GetByUserID(userID string) (*domain.UserProfile, error) {
	var model models.UserProfileModel
	if err := r.DB.First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user profile %s: %w", userID, err)
		}
		return nil, err
	}
	return mappers.ToDomainUserProfile(&model), nil
}
