// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/target-ledger/backend/internal/domain/entity"
)

// AuditRecordModel represents the audit_records table in the database.
type AuditRecordModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorRole  string    `gorm:"type:varchar(20);not null"`
	Action     string    `gorm:"type:varchar(40);not null;index"`
	EntityType string    `gorm:"type:varchar(40);not null"`
	EntityID   uint      `gorm:"not null"`
	Payload    string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the AuditRecordModel.
func (AuditRecordModel) TableName() string {
	return "audit_records"
}

// AuditRecordFromEntity creates an AuditRecordModel from a domain AuditRecord.
func AuditRecordFromEntity(r *entity.AuditRecord) *AuditRecordModel {
	return &AuditRecordModel{
		ID:         r.ID,
		ActorID:    r.ActorID,
		ActorRole:  string(r.ActorRole),
		Action:     string(r.Action),
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Payload:    string(r.Payload),
		CreatedAt:  r.CreatedAt,
	}
}

// LedgerModels lists every model the ledger schema migrates, in dependency order.
func LedgerModels() []any {
	return []any{
		&TargetModel{},
		&ProgressEntryModel{},
		&FundTransferModel{},
		&AuditRecordModel{},
	}
}
