package models

import "time"

// NotificationLog is the audit trail of outbound WhatsApp deliveries. One row
// per dispatch (not per attempt); Attempts records how many tries were made.
type NotificationLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    uint      `gorm:"not null;index" json:"tenant_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Phone       string    `gorm:"size:20;not null" json:"phone"`
	MessageID   string    `gorm:"size:36;uniqueIndex;not null" json:"message_id"`
	MessageType string    `gorm:"size:20;not null" json:"message_type"`
	Attempts    int       `gorm:"not null" json:"attempts"`
	Success     bool      `gorm:"not null" json:"success"`
	Error       *string   `gorm:"size:500" json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}
