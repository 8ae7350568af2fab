package database

import (
	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"

	"gorm.io/gorm"
)

// AllModels returns every model in migration-safe order (owners before owned).
func AllModels() []interface{} {
	return []interface{}{
		&models.Tenant{},
		&models.Setting{},
		&models.Manager{},
		&models.User{},
		&models.Campaign{},
		&models.Prize{},
		&models.Spin{},
		&models.Voucher{},
		&models.DirectSpinGrant{},
		&models.ManagerAuditLog{},
		&models.SocialTask{},
		&models.TaskSubmission{},
		&models.NotificationLog{},
		&models.OTPCode{},
	}
}

// Migrate runs AutoMigrate for the full schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
