// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
	"github.com/target-ledger/backend/internal/integration/persistence/model"
)

// auditRepository implements the adapter.AuditRecorder interface on the audit_records table.
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit recorder backed by the database.
func NewAuditRepository(db *gorm.DB) adapter.AuditRecorder {
	return &auditRepository{
		db: db,
	}
}

// Record stores one audit record.
func (r *auditRepository) Record(ctx context.Context, record *entity.AuditRecord) error {
	recordModel := model.AuditRecordFromEntity(record)
	if err := r.db.WithContext(ctx).Create(recordModel).Error; err != nil {
		return storeError("record audit", err)
	}
	record.ID = recordModel.ID
	return nil
}
