package models

import "time"

type Voucher struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TenantID        uint      `gorm:"not null;index" json:"tenant_id"`
	SpinID          uint      `gorm:"not null;uniqueIndex" json:"spin_id"`
	PrizeID         uint      `gorm:"not null;index" json:"prize_id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Code            string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	ExpiresAt       time.Time `json:"expires_at"`
	RedemptionLimit uint      `gorm:"column:redemption_limit;not null;default:1" json:"redemption_limit"`
	RedemptionsUsed uint      `gorm:"column:redemptions_used;not null;default:0" json:"redemptions_used"`
	QRImageURL      *string   `gorm:"column:qr_image_url;size:255" json:"qr_image_url"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Voucher) TableName() string {
	return "vouchers"
}
