// Package target contains target lifecycle use cases.
package target

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

// ExtendTargetInput represents the input for extending a target.
type ExtendTargetInput struct {
	Actor            entity.Actor
	TargetID         uint
	AdditionalAmount decimal.Decimal
	PeriodEnd        *time.Time // Optional, defaults to the current period end
}

// ExtendTargetOutput represents the output of extending a target.
type ExtendTargetOutput struct {
	Previous *entity.Target
	Target   *entity.Target
}

// ExtendTargetUseCase freezes a target and replaces it with a larger successor.
type ExtendTargetUseCase struct {
	targetRepo adapter.TargetRepository
	dispatcher *aggregation.Dispatcher
}

// NewExtendTargetUseCase creates a new ExtendTargetUseCase instance.
func NewExtendTargetUseCase(targetRepo adapter.TargetRepository, dispatcher *aggregation.Dispatcher) *ExtendTargetUseCase {
	return &ExtendTargetUseCase{
		targetRepo: targetRepo,
		dispatcher: dispatcher,
	}
}

// Execute performs the extension.
func (uc *ExtendTargetUseCase) Execute(ctx context.Context, input ExtendTargetInput) (*ExtendTargetOutput, error) {
	if !input.AdditionalAmount.IsPositive() {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidAmount,
			"additional amount must be greater than zero",
			domainerror.ErrInvalidAmount,
		)
	}

	current, err := uc.targetRepo.FindByID(ctx, input.TargetID)
	if err != nil {
		return nil, domainerror.Classify(err)
	}
	if !input.Actor.CanActFor(current.OwnerID) {
		return nil, domainerror.NewForbiddenError("cannot extend another owner's target")
	}

	var previous *entity.Target
	successor, err := uc.targetRepo.Extend(ctx, input.TargetID, func(locked *entity.Target) (*entity.Target, error) {
		if !locked.IsActive() {
			return nil, domainerror.ErrTargetNotActive
		}
		next := locked.Extension(input.AdditionalAmount, input.PeriodEnd, input.Actor.OwnerID)
		if err := validatePeriod(next.PeriodStart, next.PeriodEnd); err != nil {
			return nil, err
		}
		previous = locked
		return next, nil
	})
	if err != nil {
		return nil, domainerror.Classify(err)
	}
	previous.Status = entity.TargetStatusExtended

	uc.dispatcher.Dispatch(aggregation.Effect{
		Actor:      input.Actor,
		Action:     entity.ChangeActionExtended,
		Subject:    successor,
		Recompute:  []*entity.Target{successor},
		EntityType: "target",
		EntityID:   successor.ID,
		Payload: map[string]any{
			"previous_target_id": previous.ID,
			"additional_amount":  input.AdditionalAmount.String(),
			"target_amount":      successor.TargetAmount.String(),
		},
	})

	return &ExtendTargetOutput{
		Previous: previous,
		Target:   successor,
	}, nil
}
