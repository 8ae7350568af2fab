package models

import "time"

// ManagerAuditLog records every grant-affecting manager action for compliance
// review. Rows are never mutated after creation.
type ManagerAuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"not null;index" json:"tenant_id"`
	ManagerID uint      `gorm:"not null;index" json:"manager_id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Action    string    `gorm:"size:50;not null" json:"action"`
	Detail    string    `gorm:"size:500" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

func (ManagerAuditLog) TableName() string {
	return "manager_audit_logs"
}

const (
	AuditActionDirectGrant = "direct_grant"
	AuditActionTaskApprove = "task_approve"
	AuditActionTaskReject  = "task_reject"
)
