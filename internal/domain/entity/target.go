// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TargetCategory classifies what a target measures.
type TargetCategory string

const (
	TargetCategoryEmployee          TargetCategory = "employee"
	TargetCategoryClientConsultancy TargetCategory = "client_consultancy"
	TargetCategoryClientAudit       TargetCategory = "client_audit"
	TargetCategoryStudent           TargetCategory = "student"
	TargetCategoryOther             TargetCategory = "other"
)

// IsValid reports whether the category is one of the known values.
func (c TargetCategory) IsValid() bool {
	switch c {
	case TargetCategoryEmployee,
		TargetCategoryClientConsultancy,
		TargetCategoryClientAudit,
		TargetCategoryStudent,
		TargetCategoryOther:
		return true
	}
	return false
}

// TargetStatus represents the lifecycle state of a target.
type TargetStatus string

const (
	TargetStatusActive    TargetStatus = "active"
	TargetStatusCompleted TargetStatus = "completed"
	TargetStatusExtended  TargetStatus = "extended"
	TargetStatusCancelled TargetStatus = "cancelled"
)

// IsValid reports whether the status is one of the known values.
func (s TargetStatus) IsValid() bool {
	switch s {
	case TargetStatusActive, TargetStatusCompleted, TargetStatusExtended, TargetStatusCancelled:
		return true
	}
	return false
}

// Target represents a numeric goal assigned to an owner for a period.
type Target struct {
	ID           uint
	OwnerID      uuid.UUID
	PeriodStart  time.Time
	PeriodEnd    *time.Time
	TargetAmount decimal.Decimal
	Category     TargetCategory
	Status       TargetStatus
	Notes        string
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewTarget creates a new active Target entity.
func NewTarget(ownerID uuid.UUID, amount decimal.Decimal, category TargetCategory, periodStart time.Time, periodEnd *time.Time, createdBy uuid.UUID) *Target {
	now := time.Now().UTC()

	return &Target{
		OwnerID:      ownerID,
		PeriodStart:  NormalizePeriod(periodStart),
		PeriodEnd:    normalizePeriodPtr(periodEnd),
		TargetAmount: amount,
		Category:     category,
		Status:       TargetStatusActive,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsActive reports whether the target currently accepts ledger activity.
func (t *Target) IsActive() bool {
	return t.Status == TargetStatusActive
}

// Extension builds the successor row created when the target is extended.
// The successor keeps owner, period and category and starts with an empty ledger.
func (t *Target) Extension(additional decimal.Decimal, periodEnd *time.Time, actor uuid.UUID) *Target {
	end := t.PeriodEnd
	if periodEnd != nil {
		end = periodEnd
	}

	next := NewTarget(t.OwnerID, t.TargetAmount.Add(additional), t.Category, t.PeriodStart, end, actor)
	next.Notes = t.Notes
	return next
}

// NormalizePeriod truncates a period boundary to UTC midnight.
func NormalizePeriod(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizePeriodPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := NormalizePeriod(*t)
	return &n
}

// PeriodKey returns the canonical string form of a period start.
func PeriodKey(t time.Time) string {
	return NormalizePeriod(t).Format("2006-01-02")
}
