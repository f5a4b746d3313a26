// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/domain/entity"
)

// ProgressEntryModel represents the progress_entries table in the database.
// Status is nullable because rows written before the approval workflow have none.
type ProgressEntryModel struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"`
	TargetID        uint            `gorm:"not null;index"`
	OwnerID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceRef       *string         `gorm:"type:varchar(255)"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Category        string          `gorm:"type:varchar(32);not null"`
	Status          *string         `gorm:"type:varchar(20);index"`
	TransactionDate time.Time       `gorm:"type:date;not null"`
	DecidedBy       *uuid.UUID      `gorm:"type:uuid"`
	DecidedAt       *time.Time      `gorm:"type:timestamp"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`

	Target *TargetModel `gorm:"foreignKey:TargetID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for the ProgressEntryModel.
func (ProgressEntryModel) TableName() string {
	return "progress_entries"
}

// ToEntity converts a ProgressEntryModel to a domain ProgressEntry entity.
func (m *ProgressEntryModel) ToEntity() *entity.ProgressEntry {
	return &entity.ProgressEntry{
		ID:              m.ID,
		TargetID:        m.TargetID,
		OwnerID:         m.OwnerID,
		SourceRef:       m.SourceRef,
		Amount:          m.Amount,
		Category:        entity.TargetCategory(m.Category),
		Status:          entity.ParseProgressStatus(m.Status),
		TransactionDate: m.TransactionDate,
		DecidedBy:       m.DecidedBy,
		DecidedAt:       m.DecidedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ProgressEntryFromEntity creates a ProgressEntryModel from a domain ProgressEntry entity.
func ProgressEntryFromEntity(e *entity.ProgressEntry) *ProgressEntryModel {
	status := string(e.Status)
	return &ProgressEntryModel{
		ID:              e.ID,
		TargetID:        e.TargetID,
		OwnerID:         e.OwnerID,
		SourceRef:       e.SourceRef,
		Amount:          e.Amount,
		Category:        string(e.Category),
		Status:          &status,
		TransactionDate: e.TransactionDate,
		DecidedBy:       e.DecidedBy,
		DecidedAt:       e.DecidedAt,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
