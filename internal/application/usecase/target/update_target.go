// Package target contains target lifecycle use cases.
package target

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

// UpdateTargetInput represents the input for updating a target. Nil fields
// are left unchanged.
type UpdateTargetInput struct {
	Actor     entity.Actor
	TargetID  uint
	Amount    *decimal.Decimal
	Category  *entity.TargetCategory
	Status    *entity.TargetStatus
	PeriodEnd *time.Time
	Notes     *string
}

// UpdateTargetOutput represents the output of updating a target.
type UpdateTargetOutput struct {
	Target *entity.Target
}

// UpdateTargetUseCase handles partial target updates.
type UpdateTargetUseCase struct {
	targetRepo adapter.TargetRepository
	dispatcher *aggregation.Dispatcher
}

// NewUpdateTargetUseCase creates a new UpdateTargetUseCase instance.
func NewUpdateTargetUseCase(targetRepo adapter.TargetRepository, dispatcher *aggregation.Dispatcher) *UpdateTargetUseCase {
	return &UpdateTargetUseCase{
		targetRepo: targetRepo,
		dispatcher: dispatcher,
	}
}

// Execute performs the update.
func (uc *UpdateTargetUseCase) Execute(ctx context.Context, input UpdateTargetInput) (*UpdateTargetOutput, error) {
	if input.Amount != nil {
		if err := validateTargetAmount(*input.Amount); err != nil {
			return nil, err
		}
	}
	if input.Category != nil && !input.Category.IsValid() {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidCategory,
			fmt.Sprintf("unknown category %q", *input.Category),
			domainerror.ErrInvalidCategory,
		)
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidStatus,
			fmt.Sprintf("unknown status %q", *input.Status),
			domainerror.ErrInvalidStatus,
		)
	}

	current, err := uc.targetRepo.FindByID(ctx, input.TargetID)
	if err != nil {
		return nil, domainerror.Classify(err)
	}
	if !input.Actor.CanActFor(current.OwnerID) {
		return nil, domainerror.NewForbiddenError("cannot update another owner's target")
	}

	changes := map[string]any{}
	updated, err := uc.targetRepo.Update(ctx, input.TargetID, func(target *entity.Target) error {
		if input.Amount != nil {
			target.TargetAmount = *input.Amount
			changes["target_amount"] = input.Amount.String()
		}
		if input.Category != nil {
			target.Category = *input.Category
			changes["category"] = *input.Category
		}
		if input.Status != nil {
			target.Status = *input.Status
			changes["status"] = *input.Status
		}
		if input.PeriodEnd != nil {
			end := entity.NormalizePeriod(*input.PeriodEnd)
			if err := validatePeriod(target.PeriodStart, &end); err != nil {
				return err
			}
			target.PeriodEnd = &end
			changes["period_end"] = entity.PeriodKey(end)
		}
		if input.Notes != nil {
			target.Notes = strings.TrimSpace(*input.Notes)
			changes["notes"] = target.Notes
		}
		return nil
	})
	if err != nil {
		return nil, domainerror.Classify(err)
	}

	uc.dispatcher.Dispatch(aggregation.Effect{
		Actor:      input.Actor,
		Action:     entity.ChangeActionUpdated,
		Subject:    updated,
		Recompute:  []*entity.Target{updated},
		EntityType: "target",
		EntityID:   updated.ID,
		Payload:    changes,
	})

	return &UpdateTargetOutput{Target: updated}, nil
}
