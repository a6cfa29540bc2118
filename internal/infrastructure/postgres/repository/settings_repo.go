package repository

import (
	"errors"
	"strconv"
	"time"

	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultSettingsRepository struct {
	DB *gorm.DB
}

func NewDefaultSettingsRepository(db *gorm.DB) *DefaultSettingsRepository {
	return &DefaultSettingsRepository{DB: db}
}

func (r *DefaultSettingsRepository) GetBool(key string, fallback bool) (bool, error) {
	var model models.SettingModel
	if err := r.DB.First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fallback, nil
		}
		return fallback, err
	}
	value, err := strconv.ParseBool(model.Value)
	if err != nil {
		return fallback, err
	}
	return value, nil
}

func (r *DefaultSettingsRepository) SetBool(key string, value bool) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.SettingModel{
		Key:       key,
		Value:     strconv.FormatBool(value),
		UpdatedAt: time.Now(),
	}).Error
}
