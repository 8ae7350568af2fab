package models

import "time"

// Manager is a tenant staff account that reviews task submissions and hands
// out direct bonus spins, capped per customer by MaxSpinsPerUser.
type Manager struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TenantID        uint      `gorm:"not null;index" json:"tenant_id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	Username        string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Password        string    `gorm:"size:255;not null" json:"-"`
	MaxSpinsPerUser uint      `gorm:"column:max_spins_per_user;not null;default:3" json:"max_spins_per_user"`
	Status          string    `gorm:"type:enum('Active','Inactive');default:'Active'" json:"status"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

func (Manager) TableName() string {
	return "managers"
}
