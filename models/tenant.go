package models

import "time"

// Tenant is one brand running promotions on the platform. The slug doubles as
// the landing-page identifier and the voucher code prefix source, so it is
// immutable after launch.
type Tenant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Slug      string    `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	WaAPIKey  *string   `gorm:"column:wa_api_key;size:255" json:"-"`
	WaSender  *string   `gorm:"column:wa_sender;size:30" json:"-"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Tenant) TableName() string {
	return "tenants"
}
