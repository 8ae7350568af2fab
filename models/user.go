package models

import "time"

type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	TenantID          uint       `gorm:"not null;uniqueIndex:idx_tenant_number,priority:1" json:"tenant_id"`
	Number            string     `gorm:"size:20;not null;uniqueIndex:idx_tenant_number,priority:2" json:"number"`
	Name              *string    `gorm:"size:100" json:"name,omitempty"`
	Email             *string    `gorm:"size:100" json:"email,omitempty"`
	ReffCode          string     `gorm:"size:20;uniqueIndex;not null" json:"reff_code"`
	ReffBy            *uint      `gorm:"column:reff_by;index" json:"reff_by"`
	BonusSpinsEarned  uint       `gorm:"column:bonus_spins_earned;not null;default:0" json:"bonus_spins_earned"`
	ReferralsUnlocked uint       `gorm:"column:referrals_unlocked;not null;default:0" json:"-"`
	VerifiedAt        *time.Time `json:"verified_at"`
	Status            string     `gorm:"type:enum('Active','Inactive','Suspend');default:'Active'" json:"status"`
	CreatedAt         time.Time  `json:"-"`
	UpdatedAt         time.Time  `json:"-"`
}

func (User) TableName() string {
	return "users"
}
