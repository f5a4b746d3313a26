// Package transfer contains fund transfer use cases.
package transfer

import (
	"context"
	"strings"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

// ReverseTransferInput represents the input for reversing a transfer.
type ReverseTransferInput struct {
	Actor      entity.Actor
	TransferID uint
	Reason     string
}

// ReverseTransferOutput represents the output of reversing a transfer.
type ReverseTransferOutput struct {
	Transfer *entity.FundTransfer
}

// ReverseTransferUseCase undoes an active transfer.
type ReverseTransferUseCase struct {
	targetRepo   adapter.TargetRepository
	transferRepo adapter.TransferRepository
	dispatcher   *aggregation.Dispatcher
}

// NewReverseTransferUseCase creates a new ReverseTransferUseCase instance.
func NewReverseTransferUseCase(targetRepo adapter.TargetRepository, transferRepo adapter.TransferRepository, dispatcher *aggregation.Dispatcher) *ReverseTransferUseCase {
	return &ReverseTransferUseCase{
		targetRepo:   targetRepo,
		transferRepo: transferRepo,
		dispatcher:   dispatcher,
	}
}

// Execute performs the reversal.
func (uc *ReverseTransferUseCase) Execute(ctx context.Context, input ReverseTransferInput) (*ReverseTransferOutput, error) {
	if !input.Actor.IsRoot() {
		return nil, domainerror.NewForbiddenError("only root may reverse transfers")
	}

	transfer, err := uc.transferRepo.Reverse(ctx, input.TransferID, input.Actor.OwnerID, strings.TrimSpace(input.Reason))
	if err != nil {
		return nil, domainerror.Classify(err)
	}

	// Either side may have been deleted since the transfer was made.
	var targets []*entity.Target
	for _, id := range []uint{transfer.FromTargetID, transfer.ToTargetID} {
		if target, err := uc.targetRepo.FindByID(ctx, id); err == nil {
			targets = append(targets, target)
		}
	}

	var subject *entity.Target
	if len(targets) > 0 {
		subject = targets[0]
	}

	uc.dispatcher.Dispatch(aggregation.Effect{
		Actor:      input.Actor,
		Action:     entity.ChangeActionFundReversed,
		Subject:    subject,
		Recompute:  targets,
		EntityType: "fund_transfer",
		EntityID:   transfer.ID,
		Payload: map[string]any{
			"amount":          transfer.Amount.String(),
			"reversal_reason": transfer.ReversalReason,
		},
	})

	return &ReverseTransferOutput{Transfer: transfer}, nil
}
