// Package progress contains the progress approval workflow use cases.
package progress

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

// SubmitProgressInput represents the input for submitting a progress entry.
type SubmitProgressInput struct {
	Actor           entity.Actor
	TargetID        uint
	Amount          decimal.Decimal
	Category        entity.TargetCategory // Optional, defaults to the target's category
	TransactionDate time.Time             // Optional, defaults to today
	SourceRef       *string
}

// SubmitProgressOutput represents the output of submitting a progress entry.
type SubmitProgressOutput struct {
	Entry *entity.ProgressEntry
}

// SubmitProgressUseCase records a pending contribution toward a target.
type SubmitProgressUseCase struct {
	targetRepo   adapter.TargetRepository
	progressRepo adapter.ProgressRepository
	dispatcher   *aggregation.Dispatcher
}

// NewSubmitProgressUseCase creates a new SubmitProgressUseCase instance.
func NewSubmitProgressUseCase(targetRepo adapter.TargetRepository, progressRepo adapter.ProgressRepository, dispatcher *aggregation.Dispatcher) *SubmitProgressUseCase {
	return &SubmitProgressUseCase{
		targetRepo:   targetRepo,
		progressRepo: progressRepo,
		dispatcher:   dispatcher,
	}
}

// Execute performs the submission. Pending entries do not change aggregates,
// so no recompute is scheduled.
func (uc *SubmitProgressUseCase) Execute(ctx context.Context, input SubmitProgressInput) (*SubmitProgressOutput, error) {
	if !input.Amount.IsPositive() {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidAmount,
			"amount must be greater than zero",
			domainerror.ErrInvalidAmount,
		)
	}
	if input.Category != "" && !input.Category.IsValid() {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidCategory,
			fmt.Sprintf("unknown category %q", input.Category),
			domainerror.ErrInvalidCategory,
		)
	}

	target, err := uc.targetRepo.FindByID(ctx, input.TargetID)
	if err != nil {
		return nil, domainerror.Classify(err)
	}
	if !input.Actor.CanActFor(target.OwnerID) {
		return nil, domainerror.NewForbiddenError("cannot submit progress for another owner's target")
	}
	if !target.IsActive() {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeTargetNotActive,
			"progress can only be submitted to an active target",
			domainerror.ErrTargetNotActive,
		)
	}

	category := input.Category
	if category == "" {
		category = target.Category
	}
	transactionDate := input.TransactionDate
	if transactionDate.IsZero() {
		transactionDate = entity.NormalizePeriod(time.Now())
	}

	var sourceRef *string
	if input.SourceRef != nil {
		if trimmed := strings.TrimSpace(*input.SourceRef); trimmed != "" {
			sourceRef = &trimmed
		}
	}

	entry := entity.NewProgressEntry(target, input.Amount, category, transactionDate, sourceRef)
	if err := uc.progressRepo.Create(ctx, entry); err != nil {
		return nil, domainerror.Classify(err)
	}

	uc.dispatcher.Dispatch(aggregation.Effect{
		Actor:      input.Actor,
		Action:     entity.ChangeActionProgressSubmitted,
		Subject:    target,
		EntityType: "progress_entry",
		EntityID:   entry.ID,
		Payload: map[string]any{
			"target_id": target.ID,
			"amount":    entry.Amount.String(),
			"category":  entry.Category,
		},
	})

	return &SubmitProgressOutput{Entry: entry}, nil
}
