// Package target contains target lifecycle use cases.
package target

import (
	"context"
	"time"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

// DeleteTargetInput represents the input for deleting a target.
type DeleteTargetInput struct {
	Actor    entity.Actor
	TargetID uint
}

// DeleteTargetUseCase physically removes a target and its progress entries.
type DeleteTargetUseCase struct {
	targetRepo adapter.TargetRepository
	engine     *aggregation.Engine
	dispatcher *aggregation.Dispatcher
}

// NewDeleteTargetUseCase creates a new DeleteTargetUseCase instance.
func NewDeleteTargetUseCase(targetRepo adapter.TargetRepository, engine *aggregation.Engine, dispatcher *aggregation.Dispatcher) *DeleteTargetUseCase {
	return &DeleteTargetUseCase{
		targetRepo: targetRepo,
		engine:     engine,
		dispatcher: dispatcher,
	}
}

// Execute performs the deletion.
func (uc *DeleteTargetUseCase) Execute(ctx context.Context, input DeleteTargetInput) error {
	if !input.Actor.IsRoot() {
		return domainerror.NewForbiddenError("only root may delete targets")
	}

	deleted, err := uc.targetRepo.Delete(ctx, input.TargetID)
	if err != nil {
		return domainerror.Classify(err)
	}

	var periods []time.Time
	if !uc.engine.IsRootOwner(deleted.OwnerID) {
		periods = append(periods, deleted.PeriodStart)
	}

	uc.dispatcher.Dispatch(aggregation.Effect{
		Actor:      input.Actor,
		Action:     entity.ChangeActionDeleted,
		Subject:    deleted,
		Periods:    periods,
		EntityType: "target",
		EntityID:   deleted.ID,
		Payload: map[string]any{
			"owner_id":     deleted.OwnerID,
			"period_start": entity.PeriodKey(deleted.PeriodStart),
		},
	})

	return nil
}
