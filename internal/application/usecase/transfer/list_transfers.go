// Package transfer contains fund transfer use cases.
package transfer

import (
	"context"

	"github.com/google/uuid"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

// ListTransfersInput represents the filters for listing transfers.
type ListTransfersInput struct {
	Actor   entity.Actor
	OwnerID *uuid.UUID
	Status  *entity.TransferStatus
}

// ListTransfersOutput represents the output of listing transfers.
type ListTransfersOutput struct {
	Transfers []*entity.FundTransfer
}

// ListTransfersUseCase lists transfers visible to the actor.
type ListTransfersUseCase struct {
	transferRepo adapter.TransferRepository
}

// NewListTransfersUseCase creates a new ListTransfersUseCase instance.
func NewListTransfersUseCase(transferRepo adapter.TransferRepository) *ListTransfersUseCase {
	return &ListTransfersUseCase{
		transferRepo: transferRepo,
	}
}

// Execute performs the listing. Non-root actors only see transfers they are party to.
func (uc *ListTransfersUseCase) Execute(ctx context.Context, input ListTransfersInput) (*ListTransfersOutput, error) {
	ownerID := input.OwnerID
	if !input.Actor.IsRoot() {
		if ownerID != nil && *ownerID != input.Actor.OwnerID {
			return nil, domainerror.NewForbiddenError("cannot list another owner's transfers")
		}
		self := input.Actor.OwnerID
		ownerID = &self
	}

	if input.Status != nil && *input.Status != entity.TransferStatusActive && *input.Status != entity.TransferStatusReversed {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidStatus,
			"unknown status filter",
			domainerror.ErrInvalidStatus,
		)
	}

	transfers, err := uc.transferRepo.List(ctx, adapter.TransferFilter{
		OwnerID: ownerID,
		Status:  input.Status,
	})
	if err != nil {
		return nil, domainerror.Classify(err)
	}

	return &ListTransfersOutput{Transfers: transfers}, nil
}
