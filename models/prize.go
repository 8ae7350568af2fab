package models

import "time"

type Prize struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	TenantID            uint       `gorm:"not null;index" json:"tenant_id"`
	CampaignID          uint       `gorm:"not null;index" json:"campaign_id"`
	Name                string     `gorm:"size:100;not null" json:"name"`
	Probability         uint       `gorm:"not null" json:"probability"`
	Position            uint       `gorm:"not null;default:0" json:"position"`
	DailyLimit          uint       `gorm:"column:daily_limit;not null;default:0" json:"daily_limit"`
	DailyAwarded        uint       `gorm:"column:daily_awarded;not null;default:0" json:"daily_awarded"`
	DailyAwardedDate    *time.Time `gorm:"column:daily_awarded_date;type:date" json:"-"`
	CurrentStock        *int       `gorm:"column:current_stock" json:"current_stock"`
	LowStockAlert       *int       `gorm:"column:low_stock_alert" json:"low_stock_alert"`
	IsActive            bool       `gorm:"not null;default:true" json:"is_active"`
	ShowTryAgainMessage bool       `gorm:"column:show_try_again_message;not null;default:false" json:"show_try_again_message"`
	TryAgainMessage     *string    `gorm:"size:255" json:"try_again_message,omitempty"`
	VoucherValidityDays uint       `gorm:"column:voucher_validity_days;not null;default:0" json:"voucher_validity_days"`
	VoucherRedeemLimit  uint       `gorm:"column:voucher_redeem_limit;not null;default:1" json:"voucher_redeem_limit"`
	VoucherGenerateQR   bool       `gorm:"column:voucher_generate_qr;not null;default:false" json:"voucher_generate_qr"`
	CreatedAt           time.Time  `json:"-"`
	UpdatedAt           time.Time  `json:"-"`
}

func (Prize) TableName() string {
	return "prizes"
}
