// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus represents the state of a fund transfer.
type TransferStatus string

const (
	TransferStatusActive   TransferStatus = "active"
	TransferStatusReversed TransferStatus = "reversed"
)

// FundTransfer represents a peer-to-peer movement of achieved value between
// two owners' targets. Transfers are never deleted, only reversed.
type FundTransfer struct {
	ID             uint
	FromOwnerID    uuid.UUID
	ToOwnerID      uuid.UUID
	FromTargetID   uint
	ToTargetID     uint
	SourceRef      *string
	Amount         decimal.Decimal
	Reason         string
	Status         TransferStatus
	CreatedBy      uuid.UUID
	ReversedBy     *uuid.UUID
	ReversedAt     *time.Time
	ReversalReason string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewFundTransfer creates a new active FundTransfer between two targets.
func NewFundTransfer(from, to *Target, amount decimal.Decimal, reason string, createdBy uuid.UUID) *FundTransfer {
	now := time.Now().UTC()

	return &FundTransfer{
		FromOwnerID:  from.OwnerID,
		ToOwnerID:    to.OwnerID,
		FromTargetID: from.ID,
		ToTargetID:   to.ID,
		Amount:       amount,
		Reason:       reason,
		Status:       TransferStatusActive,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsActive reports whether the transfer still counts toward aggregates.
func (f *FundTransfer) IsActive() bool {
	return f.Status == TransferStatusActive
}

// Reverse marks the transfer reversed by the given administrator.
func (f *FundTransfer) Reverse(by uuid.UUID, reason string) {
	now := time.Now().UTC()
	f.Status = TransferStatusReversed
	f.ReversedBy = &by
	f.ReversedAt = &now
	f.ReversalReason = reason
	f.UpdatedAt = now
}
