// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

// TransferFilter narrows a transfer listing. Nil fields are ignored.
type TransferFilter struct {
	OwnerID *uuid.UUID // matches sender or recipient
	Status  *entity.TransferStatus
}

// InsufficientFundsDetail is returned when a transfer exceeds the sender's
// available balance. It unwraps to ErrInsufficientFunds.
type InsufficientFundsDetail struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

// Error implements the error interface.
func (d *InsufficientFundsDetail) Error() string {
	return fmt.Sprintf("requested %s, available %s", d.Requested.StringFixed(2), d.Available.StringFixed(2))
}

// Unwrap returns ErrInsufficientFunds.
func (d *InsufficientFundsDetail) Unwrap() error {
	return domainerror.ErrInsufficientFunds
}

// TransferRepository defines the interface for fund transfer persistence operations.
type TransferRepository interface {
	// CreateChecked inserts the transfer if its amount does not exceed the
	// sender target's available balance. The balance read and the insert
	// happen in the same transaction.
	CreateChecked(ctx context.Context, transfer *entity.FundTransfer) error

	// FindByID retrieves a transfer by its ID.
	FindByID(ctx context.Context, id uint) (*entity.FundTransfer, error)

	// List retrieves transfers matching the filter.
	List(ctx context.Context, filter TransferFilter) ([]*entity.FundTransfer, error)

	// ListByTarget retrieves transfers sent from or received by a target.
	ListByTarget(ctx context.Context, targetID uint) ([]*entity.FundTransfer, error)

	// Reverse marks an active transfer reversed. Returns ErrNotReversible otherwise.
	Reverse(ctx context.Context, id uint, reversedBy uuid.UUID, reason string) (*entity.FundTransfer, error)
}
