// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/target-ledger/backend/internal/domain/entity"
)

// TargetFilter narrows a target listing. Nil fields are ignored.
type TargetFilter struct {
	OwnerID     *uuid.UUID
	PeriodStart *time.Time
	Status      *entity.TargetStatus
}

// TargetRepository defines the interface for target persistence operations.
type TargetRepository interface {
	// Create inserts a new target. Returns ErrDuplicateActiveTarget when the
	// owner already has an active target for the period.
	Create(ctx context.Context, target *entity.Target) error

	// FindByID retrieves a target by its ID.
	FindByID(ctx context.Context, id uint) (*entity.Target, error)

	// FindActive retrieves the owner's active target for the period, or the
	// latest active target when periodStart is nil. Returns nil when none exists.
	FindActive(ctx context.Context, ownerID uuid.UUID, periodStart *time.Time) (*entity.Target, error)

	// List retrieves targets matching the filter.
	List(ctx context.Context, filter TargetFilter) ([]*entity.Target, error)

	// Extend marks the target extended and inserts the successor in one transaction.
	Extend(ctx context.Context, id uint, build func(current *entity.Target) (*entity.Target, error)) (*entity.Target, error)

	// Update applies mutate to the stored target in one transaction and
	// re-checks the one-active-target invariant.
	Update(ctx context.Context, id uint, mutate func(target *entity.Target) error) (*entity.Target, error)

	// Delete removes the target and its progress entries.
	Delete(ctx context.Context, id uint) (*entity.Target, error)
}
