package services

import (
	"os"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"

	"gorm.io/gorm"
)

// ResolveMessagingConfig builds the WhatsApp gateway configuration for a
// tenant: tenant override, then the global settings row, then environment
// defaults. Resolved fresh per call; there is no ambient cached state.
func ResolveMessagingConfig(db *gorm.DB, tenantID uint) utils.WaConfig {
	cfg := utils.WaConfig{
		BaseURL: os.Getenv("WA_BASE_URL"),
		APIKey:  os.Getenv("WA_API_KEY"),
		Sender:  os.Getenv("WA_SENDER"),
	}

	var setting models.Setting
	if err := db.First(&setting).Error; err == nil {
		if v := utils.GetStringValue(setting.WaBaseURL); v != "" {
			cfg.BaseURL = v
		}
		if v := utils.GetStringValue(setting.WaAPIKey); v != "" {
			cfg.APIKey = v
		}
		if v := utils.GetStringValue(setting.WaSender); v != "" {
			cfg.Sender = v
		}
	}

	if tenantID != 0 {
		var tenant models.Tenant
		if err := db.First(&tenant, tenantID).Error; err == nil {
			if v := utils.GetStringValue(tenant.WaAPIKey); v != "" {
				cfg.APIKey = v
			}
			if v := utils.GetStringValue(tenant.WaSender); v != "" {
				cfg.Sender = v
			}
		}
	}

	return cfg
}
