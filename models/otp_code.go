package models

import "time"

type OTPCode struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TenantID   uint       `gorm:"not null;index" json:"tenant_id"`
	Number     string     `gorm:"size:20;not null;index" json:"number"`
	Code       string     `gorm:"size:10;not null" json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"-"`
	CreatedAt  time.Time  `json:"-"`
}

func (OTPCode) TableName() string {
	return "otp_codes"
}
