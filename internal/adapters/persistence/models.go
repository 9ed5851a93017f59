package persistence

import (
	"time"
)

// GreetingModel represents the greetings table
type GreetingModel struct {
	ID        string    `gorm:"column:id;primaryKey;not null"`
	Name      string    `gorm:"column:name;not null;index:idx_greetings_name"`
	Message   string    `gorm:"column:message;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_greetings_created_at"`
}

func (GreetingModel) TableName() string {
	return "greetings"
}

// AuditEntryModel represents the audit_entries table
type AuditEntryModel struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	RequestID   string    `gorm:"column:request_id;index:idx_audit_request_id"`
	RequestType string    `gorm:"column:request_type;not null"`
	Kind        string    `gorm:"column:kind;not null"`
	Succeeded   bool      `gorm:"column:succeeded;not null"`
	ErrorKind   string    `gorm:"column:error_kind"`
	Error       string    `gorm:"column:error;type:text"`
	DurationMs  int64     `gorm:"column:duration_ms;not null;default:0"`
	Timestamp   time.Time `gorm:"column:timestamp;not null;index:idx_audit_timestamp"`
}

func (AuditEntryModel) TableName() string {
	return "audit_entries"
}
