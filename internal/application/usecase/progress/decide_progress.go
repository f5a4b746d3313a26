// Package progress contains the progress approval workflow use cases.
package progress

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

// DecideProgressInput represents an authorizer decision on a progress entry.
type DecideProgressInput struct {
	Actor    entity.Actor
	EntryID  uint
	Decision entity.ProgressStatus
}

// DecideProgressOutput represents the output of a decision.
type DecideProgressOutput struct {
	Entry          *entity.ProgressEntry
	PreviousStatus entity.ProgressStatus
	Recomputed     bool
}

// DecideProgressUseCase approves or rejects progress entries.
type DecideProgressUseCase struct {
	targetRepo   adapter.TargetRepository
	progressRepo adapter.ProgressRepository
	dispatcher   *aggregation.Dispatcher
}

// NewDecideProgressUseCase creates a new DecideProgressUseCase instance.
func NewDecideProgressUseCase(targetRepo adapter.TargetRepository, progressRepo adapter.ProgressRepository, dispatcher *aggregation.Dispatcher) *DecideProgressUseCase {
	return &DecideProgressUseCase{
		targetRepo:   targetRepo,
		progressRepo: progressRepo,
		dispatcher:   dispatcher,
	}
}

// Execute applies the decision. The parent target is recomputed when the
// entry moves into or out of approved.
func (uc *DecideProgressUseCase) Execute(ctx context.Context, input DecideProgressInput) (*DecideProgressOutput, error) {
	if !input.Actor.IsRoot() {
		return nil, domainerror.NewForbiddenError("only root may decide progress entries")
	}
	if !input.Decision.IsDecision() {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidStatus,
			fmt.Sprintf("decision must be %q or %q", entity.ProgressStatusApproved, entity.ProgressStatusRejected),
			domainerror.ErrInvalidStatus,
		)
	}

	result, err := uc.progressRepo.Decide(ctx, input.EntryID, input.Decision, input.Actor.OwnerID)
	if err != nil {
		return nil, domainerror.Classify(err)
	}

	target, err := uc.targetRepo.FindByID(ctx, result.Entry.TargetID)
	if err != nil {
		// The decision is committed; the target only feeds the side effects.
		slog.WarnContext(ctx, "Failed to load target for decided entry",
			"entry_id", result.Entry.ID,
			"target_id", result.Entry.TargetID,
			"error", err,
		)
	}

	recompute := entity.DecisionAffectsAggregate(result.PreviousStatus, input.Decision)
	var targets []*entity.Target
	if recompute && target != nil {
		targets = []*entity.Target{target}
	}

	action := entity.ChangeActionProgressRejected
	if input.Decision == entity.ProgressStatusApproved {
		action = entity.ChangeActionProgressApproved
	}

	uc.dispatcher.Dispatch(aggregation.Effect{
		Actor:      input.Actor,
		Action:     action,
		Subject:    target,
		Recompute:  targets,
		EntityType: "progress_entry",
		EntityID:   result.Entry.ID,
		Payload: map[string]any{
			"target_id":       result.Entry.TargetID,
			"previous_status": result.PreviousStatus,
			"status":          input.Decision,
		},
	})

	return &DecideProgressOutput{
		Entry:          result.Entry,
		PreviousStatus: result.PreviousStatus,
		Recomputed:     recompute,
	}, nil
}
