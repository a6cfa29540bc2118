package repository

import (
	"time"

	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultAuthTokenRepository struct {
	DB *gorm.DB
}

func NewDefaultAuthTokenRepository(db *gorm.DB) *DefaultAuthTokenRepository {
	return &DefaultAuthTokenRepository{DB: db}
}

func (r *DefaultAuthTokenRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.DB.
		Where("expires_at < ?", now).
		Delete(&models.AuthTokenModel{})
	return result.RowsAffected, result.Error
}
