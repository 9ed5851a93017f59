package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
)

// GormAuditRepository stores command audit entries
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GORM audit repository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Record implements common.AuditSink
func (r *GormAuditRepository) Record(ctx context.Context, entry common.AuditEntry) error {
	model := &AuditEntryModel{
		RequestID:   entry.RequestID,
		RequestType: entry.RequestType,
		Kind:        entry.Kind,
		Succeeded:   entry.Succeeded,
		ErrorKind:   entry.ErrorKind,
		Error:       entry.Error,
		DurationMs:  entry.Duration.Milliseconds(),
		Timestamp:   entry.Timestamp,
	}

	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// FindByRequestType returns the most recent entries for a request type
func (r *GormAuditRepository) FindByRequestType(ctx context.Context, requestType string, limit int) ([]common.AuditEntry, error) {
	var models []AuditEntryModel
	err := dbFromContext(ctx, r.db).
		Where("request_type = ?", requestType).
		Order("timestamp DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find audit entries: %w", err)
	}

	entries := make([]common.AuditEntry, len(models))
	for i, m := range models {
		entries[i] = common.AuditEntry{
			RequestID:   m.RequestID,
			RequestType: m.RequestType,
			Kind:        m.Kind,
			Succeeded:   m.Succeeded,
			ErrorKind:   m.ErrorKind,
			Error:       m.Error,
			Duration:    time.Duration(m.DurationMs) * time.Millisecond,
			Timestamp:   m.Timestamp,
		}
	}
	return entries, nil
}
