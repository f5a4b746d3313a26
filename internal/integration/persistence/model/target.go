// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/domain/entity"
)

// TargetModel represents the targets table in the database.
// The partial unique index enforces one active target per owner and period.
type TargetModel struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	OwnerID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_targets_active_owner_period,where:status = 'active'"`
	PeriodStart  time.Time       `gorm:"type:date;not null;index;uniqueIndex:idx_targets_active_owner_period,where:status = 'active'"`
	PeriodEnd    *time.Time      `gorm:"type:date"`
	TargetAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Category     string          `gorm:"type:varchar(32);not null"`
	Status       string          `gorm:"type:varchar(20);not null;default:'active';index"`
	Notes        string          `gorm:"type:text"`
	CreatedBy    uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for the TargetModel.
func (TargetModel) TableName() string {
	return "targets"
}

// ToEntity converts a TargetModel to a domain Target entity.
func (m *TargetModel) ToEntity() *entity.Target {
	return &entity.Target{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		PeriodStart:  entity.NormalizePeriod(m.PeriodStart),
		PeriodEnd:    m.PeriodEnd,
		TargetAmount: m.TargetAmount,
		Category:     entity.TargetCategory(m.Category),
		Status:       entity.TargetStatus(m.Status),
		Notes:        m.Notes,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// TargetFromEntity creates a TargetModel from a domain Target entity.
func TargetFromEntity(t *entity.Target) *TargetModel {
	return &TargetModel{
		ID:           t.ID,
		OwnerID:      t.OwnerID,
		PeriodStart:  entity.NormalizePeriod(t.PeriodStart),
		PeriodEnd:    t.PeriodEnd,
		TargetAmount: t.TargetAmount,
		Category:     string(t.Category),
		Status:       string(t.Status),
		Notes:        t.Notes,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
