// Package target contains target lifecycle use cases.
package target

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/domain/valueobject"
)

// CreateTargetInput represents the input for target creation.
type CreateTargetInput struct {
	Actor       entity.Actor
	OwnerID     uuid.UUID // Optional, defaults to the actor
	Amount      decimal.Decimal
	Category    entity.TargetCategory
	PeriodStart time.Time
	PeriodEnd   *time.Time
	Notes       string
}

// CreateTargetOutput represents the output of target creation.
type CreateTargetOutput struct {
	Target    *entity.Target
	Aggregate valueobject.Aggregate
}

// CreateTargetUseCase handles target creation logic.
type CreateTargetUseCase struct {
	targetRepo adapter.TargetRepository
	dispatcher *aggregation.Dispatcher
}

// NewCreateTargetUseCase creates a new CreateTargetUseCase instance.
func NewCreateTargetUseCase(targetRepo adapter.TargetRepository, dispatcher *aggregation.Dispatcher) *CreateTargetUseCase {
	return &CreateTargetUseCase{
		targetRepo: targetRepo,
		dispatcher: dispatcher,
	}
}

// Execute performs the target creation.
func (uc *CreateTargetUseCase) Execute(ctx context.Context, input CreateTargetInput) (*CreateTargetOutput, error) {
	ownerID := input.OwnerID
	if ownerID == uuid.Nil {
		ownerID = input.Actor.OwnerID
	}
	if !input.Actor.CanActFor(ownerID) {
		return nil, domainerror.NewForbiddenError("cannot create a target for another owner")
	}

	if err := validateTargetAmount(input.Amount); err != nil {
		return nil, err
	}
	if !input.Category.IsValid() {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidCategory,
			fmt.Sprintf("unknown category %q", input.Category),
			domainerror.ErrInvalidCategory,
		)
	}
	if err := validatePeriod(input.PeriodStart, input.PeriodEnd); err != nil {
		return nil, err
	}

	target := entity.NewTarget(ownerID, input.Amount, input.Category, input.PeriodStart, input.PeriodEnd, input.Actor.OwnerID)
	target.Notes = strings.TrimSpace(input.Notes)

	if err := uc.targetRepo.Create(ctx, target); err != nil {
		return nil, domainerror.Classify(err)
	}

	uc.dispatcher.Dispatch(aggregation.Effect{
		Actor:      input.Actor,
		Action:     entity.ChangeActionCreated,
		Subject:    target,
		Recompute:  []*entity.Target{target},
		EntityType: "target",
		EntityID:   target.ID,
		Payload: map[string]any{
			"owner_id":      target.OwnerID,
			"period_start":  entity.PeriodKey(target.PeriodStart),
			"target_amount": target.TargetAmount.String(),
			"category":      target.Category,
		},
	})

	return &CreateTargetOutput{
		Target:    target,
		Aggregate: valueobject.NewAggregate(target.ID, target.TargetAmount, valueobject.LedgerTotals{}),
	}, nil
}
