package postgres

import (
	"log"

	"github.com/begintolern/linkmint-core/internal/config"
	"github.com/begintolern/linkmint-core/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.PayoutConfig) *gorm.DB {
	dsn := cfg.PayoutDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(
		&models.CommissionModel{},
		&models.PayoutRequestModel{},
		&models.FloatBalanceModel{},
		&models.EventLogModel{},
		&models.SettingModel{},
		&models.AuthTokenModel{},
		&models.ClickModel{},
		&models.MerchantRuleModel{},
		&models.ReferralOverrideModel{},
		&models.UserProfileModel{},
	)

	return db
}
