package models

import "time"

// Reminder is a scheduled notification for an upcoming transaction.
// Delivery is handled outside this service; this table is the scheduler's
// source of truth for what is pending and when it fires.
type Reminder struct {
	Base
	UserID        string    `gorm:"type:uuid;not null;index" json:"user_id"`
	TransactionID string    `gorm:"type:uuid;not null;uniqueIndex" json:"transaction_id"`
	FireAt        time.Time `gorm:"not null;index" json:"fire_at"`
	Message       string    `json:"message"`
}
