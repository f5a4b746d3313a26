// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/domain/entity"
)

// FundTransferModel represents the fund_transfers table in the database.
type FundTransferModel struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"`
	FromOwnerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ToOwnerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	FromTargetID   uint            `gorm:"not null;index"`
	ToTargetID     uint            `gorm:"not null;index"`
	SourceRef      *string         `gorm:"type:varchar(255)"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Reason         string          `gorm:"type:text"`
	Status         string          `gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedBy      uuid.UUID       `gorm:"type:uuid;not null"`
	ReversedBy     *uuid.UUID      `gorm:"type:uuid"`
	ReversedAt     *time.Time      `gorm:"type:timestamp"`
	ReversalReason string          `gorm:"type:text"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for the FundTransferModel.
func (FundTransferModel) TableName() string {
	return "fund_transfers"
}

// ToEntity converts a FundTransferModel to a domain FundTransfer entity.
func (m *FundTransferModel) ToEntity() *entity.FundTransfer {
	return &entity.FundTransfer{
		ID:             m.ID,
		FromOwnerID:    m.FromOwnerID,
		ToOwnerID:      m.ToOwnerID,
		FromTargetID:   m.FromTargetID,
		ToTargetID:     m.ToTargetID,
		SourceRef:      m.SourceRef,
		Amount:         m.Amount,
		Reason:         m.Reason,
		Status:         entity.TransferStatus(m.Status),
		CreatedBy:      m.CreatedBy,
		ReversedBy:     m.ReversedBy,
		ReversedAt:     m.ReversedAt,
		ReversalReason: m.ReversalReason,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FundTransferFromEntity creates a FundTransferModel from a domain FundTransfer entity.
func FundTransferFromEntity(f *entity.FundTransfer) *FundTransferModel {
	return &FundTransferModel{
		ID:             f.ID,
		FromOwnerID:    f.FromOwnerID,
		ToOwnerID:      f.ToOwnerID,
		FromTargetID:   f.FromTargetID,
		ToTargetID:     f.ToTargetID,
		SourceRef:      f.SourceRef,
		Amount:         f.Amount,
		Reason:         f.Reason,
		Status:         string(f.Status),
		CreatedBy:      f.CreatedBy,
		ReversedBy:     f.ReversedBy,
		ReversedAt:     f.ReversedAt,
		ReversalReason: f.ReversalReason,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}
