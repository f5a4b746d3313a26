// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/target-ledger/backend/internal/domain/entity"
)

// DecisionResult describes a status transition applied to a progress entry.
type DecisionResult struct {
	Entry          *entity.ProgressEntry
	PreviousStatus entity.ProgressStatus
}

// ProgressRepository defines the interface for progress entry persistence operations.
type ProgressRepository interface {
	// Create inserts a pending progress entry.
	Create(ctx context.Context, entry *entity.ProgressEntry) error

	// FindByID retrieves a progress entry by its ID.
	FindByID(ctx context.Context, id uint) (*entity.ProgressEntry, error)

	// ListByTarget retrieves the entries of a target, optionally filtered by status.
	ListByTarget(ctx context.Context, targetID uint, status *entity.ProgressStatus) ([]*entity.ProgressEntry, error)

	// Decide sets the entry status. Returns ErrAlreadyInState when unchanged.
	Decide(ctx context.Context, id uint, decision entity.ProgressStatus, decidedBy uuid.UUID) (*DecisionResult, error)
}
