package models

import "time"

// Setting is the single global settings row. WhatsApp credentials here are the
// middle layer of the tenant -> settings -> environment resolution chain.
type Setting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WaBaseURL   *string   `gorm:"column:wa_base_url;size:255" json:"-"`
	WaAPIKey    *string   `gorm:"column:wa_api_key;size:255" json:"-"`
	WaSender    *string   `gorm:"column:wa_sender;size:30" json:"-"`
	Maintenance bool      `gorm:"not null;default:false" json:"maintenance"`
	UpdatedAt   time.Time `json:"-"`
}

func (Setting) TableName() string {
	return "settings"
}
