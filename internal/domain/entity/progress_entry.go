// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProgressStatus represents the approval state of a progress entry.
type ProgressStatus string

const (
	ProgressStatusPending  ProgressStatus = "pending"
	ProgressStatusApproved ProgressStatus = "approved"
	ProgressStatusRejected ProgressStatus = "rejected"
)

// ParseProgressStatus normalizes a stored status. Legacy rows without a
// status were written before the approval workflow existed and count as approved.
func ParseProgressStatus(raw *string) ProgressStatus {
	if raw == nil || *raw == "" {
		return ProgressStatusApproved
	}
	return ProgressStatus(*raw)
}

// IsDecision reports whether the status is a valid authorizer decision.
func (s ProgressStatus) IsDecision() bool {
	return s == ProgressStatusApproved || s == ProgressStatusRejected
}

// IsValid reports whether the status is one of the known values.
func (s ProgressStatus) IsValid() bool {
	return s == ProgressStatusPending || s.IsDecision()
}

// ProgressEntry represents a contribution toward a Target, subject to approval.
type ProgressEntry struct {
	ID              uint
	TargetID        uint
	OwnerID         uuid.UUID
	SourceRef       *string
	Amount          decimal.Decimal
	Category        TargetCategory
	Status          ProgressStatus
	TransactionDate time.Time
	DecidedBy       *uuid.UUID
	DecidedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewProgressEntry creates a new pending ProgressEntry entity.
func NewProgressEntry(target *Target, amount decimal.Decimal, category TargetCategory, transactionDate time.Time, sourceRef *string) *ProgressEntry {
	now := time.Now().UTC()

	return &ProgressEntry{
		TargetID:        target.ID,
		OwnerID:         target.OwnerID,
		SourceRef:       sourceRef,
		Amount:          amount,
		Category:        category,
		Status:          ProgressStatusPending,
		TransactionDate: transactionDate.UTC(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Counts reports whether the entry contributes to aggregates.
func (e *ProgressEntry) Counts() bool {
	return e.Status == ProgressStatusApproved
}

// DecisionAffectsAggregate reports whether moving from prev to next changes
// the approved total of the parent target.
func DecisionAffectsAggregate(prev, next ProgressStatus) bool {
	return prev == ProgressStatusApproved || next == ProgressStatusApproved
}
