// Package target contains target lifecycle use cases.
package target

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

// ListTargetsInput represents the filters for listing targets.
type ListTargetsInput struct {
	Actor       entity.Actor
	OwnerID     *uuid.UUID
	PeriodStart *time.Time
	Status      *entity.TargetStatus
}

// ListTargetsOutput represents the output of listing targets.
type ListTargetsOutput struct {
	Targets []*entity.Target
}

// ListTargetsUseCase lists targets visible to the actor.
type ListTargetsUseCase struct {
	targetRepo adapter.TargetRepository
}

// NewListTargetsUseCase creates a new ListTargetsUseCase instance.
func NewListTargetsUseCase(targetRepo adapter.TargetRepository) *ListTargetsUseCase {
	return &ListTargetsUseCase{
		targetRepo: targetRepo,
	}
}

// Execute performs the listing. Non-root actors only see their own targets.
func (uc *ListTargetsUseCase) Execute(ctx context.Context, input ListTargetsInput) (*ListTargetsOutput, error) {
	ownerID := input.OwnerID
	if !input.Actor.IsRoot() {
		if ownerID != nil && *ownerID != input.Actor.OwnerID {
			return nil, domainerror.NewForbiddenError("cannot list another owner's targets")
		}
		self := input.Actor.OwnerID
		ownerID = &self
	}

	if input.Status != nil && !input.Status.IsValid() {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidStatus,
			"unknown status filter",
			domainerror.ErrInvalidStatus,
		)
	}

	targets, err := uc.targetRepo.List(ctx, adapter.TargetFilter{
		OwnerID:     ownerID,
		PeriodStart: input.PeriodStart,
		Status:      input.Status,
	})
	if err != nil {
		return nil, domainerror.Classify(err)
	}

	return &ListTargetsOutput{Targets: targets}, nil
}
