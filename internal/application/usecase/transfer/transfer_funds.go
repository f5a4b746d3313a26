// Package transfer contains fund transfer use cases.
package transfer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

// DefaultLockTTL bounds how long a sender stays serialized.
const DefaultLockTTL = 10 * time.Second

// TransferFundsInput represents the input for a fund transfer.
type TransferFundsInput struct {
	Actor       entity.Actor
	FromOwnerID uuid.UUID // Optional, defaults to the actor
	ToOwnerID   uuid.UUID
	Amount      decimal.Decimal
	Reason      string
	PeriodStart *time.Time // Optional, selects the targets of this period
	SourceRef   *string
}

// TransferFundsOutput represents the output of a fund transfer.
type TransferFundsOutput struct {
	Transfer *entity.FundTransfer
}

// TransferFundsUseCase moves achieved value from one owner to another.
type TransferFundsUseCase struct {
	targetRepo   adapter.TargetRepository
	transferRepo adapter.TransferRepository
	locker       adapter.Locker
	lockTTL      time.Duration
	dispatcher   *aggregation.Dispatcher
}

// NewTransferFundsUseCase creates a new TransferFundsUseCase instance. A nil
// locker leaves serialization to the database transaction.
func NewTransferFundsUseCase(
	targetRepo adapter.TargetRepository,
	transferRepo adapter.TransferRepository,
	locker adapter.Locker,
	lockTTL time.Duration,
	dispatcher *aggregation.Dispatcher,
) *TransferFundsUseCase {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &TransferFundsUseCase{
		targetRepo:   targetRepo,
		transferRepo: transferRepo,
		locker:       locker,
		lockTTL:      lockTTL,
		dispatcher:   dispatcher,
	}
}

// Execute performs the transfer.
func (uc *TransferFundsUseCase) Execute(ctx context.Context, input TransferFundsInput) (*TransferFundsOutput, error) {
	fromOwnerID := input.FromOwnerID
	if fromOwnerID == uuid.Nil {
		fromOwnerID = input.Actor.OwnerID
	}
	if !input.Actor.CanActFor(fromOwnerID) {
		return nil, domainerror.NewForbiddenError("cannot transfer on behalf of another owner")
	}
	if input.ToOwnerID == uuid.Nil {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeMissingFields,
			"recipient is required",
			nil,
		)
	}
	if fromOwnerID == input.ToOwnerID {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeSelfTransfer,
			"sender and recipient must differ",
			domainerror.ErrSelfTransfer,
		)
	}
	if !input.Amount.IsPositive() {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidAmount,
			"amount must be greater than zero",
			domainerror.ErrInvalidAmount,
		)
	}

	release, err := uc.lockSender(ctx, fromOwnerID)
	if err != nil {
		return nil, err
	}
	defer release()

	sender, err := uc.targetRepo.FindActive(ctx, fromOwnerID, input.PeriodStart)
	if err != nil {
		return nil, domainerror.Classify(err)
	}
	if sender == nil {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeNoActiveTarget,
			"sender has no active target",
			domainerror.ErrNoActiveTarget,
		)
	}

	recipient, err := uc.targetRepo.FindActive(ctx, input.ToOwnerID, input.PeriodStart)
	if err != nil {
		return nil, domainerror.Classify(err)
	}
	if recipient == nil {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeRecipientNoActiveTarget,
			"recipient has no active target",
			domainerror.ErrRecipientNoActiveTarget,
		)
	}

	transfer := entity.NewFundTransfer(sender, recipient, input.Amount, strings.TrimSpace(input.Reason), input.Actor.OwnerID)
	transfer.SourceRef = input.SourceRef

	if err := uc.transferRepo.CreateChecked(ctx, transfer); err != nil {
		return nil, domainerror.Classify(err)
	}

	uc.dispatcher.Dispatch(aggregation.Effect{
		Actor:      input.Actor,
		Action:     entity.ChangeActionFundShared,
		Subject:    sender,
		Recompute:  []*entity.Target{sender, recipient},
		EntityType: "fund_transfer",
		EntityID:   transfer.ID,
		Payload: map[string]any{
			"from_owner_id":  transfer.FromOwnerID,
			"to_owner_id":    transfer.ToOwnerID,
			"from_target_id": transfer.FromTargetID,
			"to_target_id":   transfer.ToTargetID,
			"amount":         transfer.Amount.String(),
		},
	})

	return &TransferFundsOutput{Transfer: transfer}, nil
}

// lockSender serializes transfers of one sender across instances. Lock
// contention is reported as retryable; an unreachable lock service is not
// fatal because the balance check runs inside the store transaction.
func (uc *TransferFundsUseCase) lockSender(ctx context.Context, ownerID uuid.UUID) (func(), error) {
	noop := func() {}
	if uc.locker == nil {
		return noop, nil
	}

	lock, err := uc.locker.Obtain(ctx, "ledger:transfer:"+ownerID.String(), uc.lockTTL)
	if err != nil {
		if errors.Is(err, adapter.ErrLockNotObtained) {
			return nil, domainerror.NewLedgerError(
				domainerror.ErrCodeStoreUnavailable,
				"another transfer from this sender is in progress",
				domainerror.ErrStoreUnavailable,
			)
		}
		slog.WarnContext(ctx, "Transfer lock unavailable, continuing without it",
			"owner_id", ownerID,
			"error", err,
		)
		return noop, nil
	}

	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			slog.WarnContext(ctx, "Failed to release transfer lock", "owner_id", ownerID, "error", err)
		}
	}, nil
}
