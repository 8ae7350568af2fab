package models

import "time"

// SocialTask is a tenant-configured action (follow, share, review, ...) that
// rewards bonus spins after a manager approves the submission.
type SocialTask struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    uint      `gorm:"not null;index" json:"tenant_id"`
	CampaignID  uint      `gorm:"not null;index" json:"campaign_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	TaskType    string    `gorm:"size:50;not null" json:"task_type"`
	Description string    `gorm:"size:500" json:"description"`
	BonusSpins  uint      `gorm:"column:bonus_spins;not null;default:1" json:"bonus_spins"`
	Status      string    `gorm:"type:enum('Active','Inactive');default:'Active'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SocialTask) TableName() string {
	return "social_tasks"
}

type TaskSubmission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TenantID     uint       `gorm:"not null;index" json:"tenant_id"`
	TaskID       uint       `gorm:"not null;index" json:"task_id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	ProofURL     *string    `gorm:"size:500" json:"proof_url,omitempty"`
	Status       string     `gorm:"type:enum('pending','approved','rejected');default:'pending'" json:"status"`
	RejectReason *string    `gorm:"size:255" json:"reject_reason,omitempty"`
	ReviewedBy   *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (TaskSubmission) TableName() string {
	return "task_submissions"
}
