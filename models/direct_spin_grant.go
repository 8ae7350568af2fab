package models

import "time"

// DirectSpinGrant is an append-only ledger row per manager-initiated grant.
// The SUM of SpinsGranted for a (manager, user) pair is the sole determinant
// of remaining headroom against Manager.MaxSpinsPerUser; rows are never
// updated or deleted.
type DirectSpinGrant struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TenantID     uint      `gorm:"not null;index" json:"tenant_id"`
	ManagerID    uint      `gorm:"not null;index:idx_manager_user,priority:1" json:"manager_id"`
	UserID       uint      `gorm:"not null;index:idx_manager_user,priority:2" json:"user_id"`
	SpinsGranted uint      `gorm:"column:spins_granted;not null" json:"spins_granted"`
	Comment      *string   `gorm:"size:255" json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (DirectSpinGrant) TableName() string {
	return "direct_spin_grants"
}
