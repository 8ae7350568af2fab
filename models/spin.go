package models

import "time"

// Spin is the append-only record of one resolved spin attempt. It is the
// source of truth for "has this customer ever spun", for cooldown windows and
// for how many bonus spins have been consumed.
type Spin struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TenantID        uint      `gorm:"not null;index" json:"tenant_id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	CampaignID      uint      `gorm:"not null;index" json:"campaign_id"`
	PrizeID         *uint     `gorm:"index" json:"prize_id"`
	WonPrize        bool      `gorm:"column:won_prize;not null;default:false" json:"won_prize"`
	IsReferralBonus bool      `gorm:"column:is_referral_bonus;not null;default:false" json:"is_referral_bonus"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Spin) TableName() string {
	return "spins"
}
