// Package target contains target lifecycle use cases.
package target

import (
	"context"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/domain/valueobject"
)

// GetTargetInput represents the input for reading a target.
type GetTargetInput struct {
	Actor    entity.Actor
	TargetID uint
}

// GetTargetOutput represents a target with its freshly derived aggregate.
type GetTargetOutput struct {
	Target    *entity.Target
	Aggregate valueobject.Aggregate
}

// GetTargetUseCase reads one target.
type GetTargetUseCase struct {
	targetRepo adapter.TargetRepository
	engine     *aggregation.Engine
}

// NewGetTargetUseCase creates a new GetTargetUseCase instance.
func NewGetTargetUseCase(targetRepo adapter.TargetRepository, engine *aggregation.Engine) *GetTargetUseCase {
	return &GetTargetUseCase{
		targetRepo: targetRepo,
		engine:     engine,
	}
}

// Execute performs the read.
func (uc *GetTargetUseCase) Execute(ctx context.Context, input GetTargetInput) (*GetTargetOutput, error) {
	target, err := uc.targetRepo.FindByID(ctx, input.TargetID)
	if err != nil {
		return nil, domainerror.Classify(err)
	}
	if !input.Actor.CanActFor(target.OwnerID) {
		return nil, domainerror.NewForbiddenError("cannot read another owner's target")
	}

	aggregate, err := uc.engine.Recompute(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	// The roll-up amount may have been rewritten by the recompute.
	target.TargetAmount = aggregate.TargetAmount

	return &GetTargetOutput{
		Target:    target,
		Aggregate: *aggregate,
	}, nil
}
