package models

import "time"

type Campaign struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	TenantID          uint      `gorm:"not null;index" json:"tenant_id"`
	Name              string    `gorm:"size:100;not null" json:"name"`
	SpinLimit         uint      `gorm:"column:spin_limit;not null;default:1" json:"spin_limit"`
	SpinCooldownHours uint      `gorm:"column:spin_cooldown_hours;not null;default:24" json:"spin_cooldown_hours"`
	ReferralsRequired uint      `gorm:"column:referrals_required;not null;default:3" json:"referrals_required"`
	StartsAt          time.Time `json:"starts_at"`
	EndsAt            time.Time `json:"ends_at"`
	IsActive          bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// IsLive reports whether the campaign accepts spins at the given moment.
// The active flag and the date window gate jointly.
func (c Campaign) IsLive(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.StartsAt) {
		return false
	}
	if !c.EndsAt.IsZero() && now.After(c.EndsAt) {
		return false
	}
	return true
}
