// Package progress contains the progress approval workflow use cases.
package progress

import (
	"context"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

// ListProgressInput represents the input for listing a target's entries.
type ListProgressInput struct {
	Actor    entity.Actor
	TargetID uint
	Status   *entity.ProgressStatus
}

// ListProgressOutput represents the output of listing progress entries.
type ListProgressOutput struct {
	Entries []*entity.ProgressEntry
}

// ListProgressUseCase lists the entries of one target.
type ListProgressUseCase struct {
	targetRepo   adapter.TargetRepository
	progressRepo adapter.ProgressRepository
}

// NewListProgressUseCase creates a new ListProgressUseCase instance.
func NewListProgressUseCase(targetRepo adapter.TargetRepository, progressRepo adapter.ProgressRepository) *ListProgressUseCase {
	return &ListProgressUseCase{
		targetRepo:   targetRepo,
		progressRepo: progressRepo,
	}
}

// Execute performs the listing.
func (uc *ListProgressUseCase) Execute(ctx context.Context, input ListProgressInput) (*ListProgressOutput, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidStatus,
			"unknown status filter",
			domainerror.ErrInvalidStatus,
		)
	}

	target, err := uc.targetRepo.FindByID(ctx, input.TargetID)
	if err != nil {
		return nil, domainerror.Classify(err)
	}
	if !input.Actor.CanActFor(target.OwnerID) {
		return nil, domainerror.NewForbiddenError("cannot list another owner's progress")
	}

	entries, err := uc.progressRepo.ListByTarget(ctx, target.ID, input.Status)
	if err != nil {
		return nil, domainerror.Classify(err)
	}

	return &ListProgressOutput{Entries: entries}, nil
}
