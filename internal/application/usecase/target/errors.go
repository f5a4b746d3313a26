// Package target contains target lifecycle use cases.
package target

import (
	"time"

	"github.com/shopspring/decimal"

	domainerror "github.com/target-ledger/backend/internal/domain/error"
)


func validatePeriod(start time.Time, end *time.Time) error {
	if start.IsZero() {
		return domainerror.NewLedgerError(
			domainerror.ErrCodeMissingFields,
			"period start is required",
			domainerror.ErrInvalidPeriod,
		)
	}
	if end != nil && end.Before(start) {
		return domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidPeriod,
			"period end must not be before period start",
			domainerror.ErrInvalidPeriod,
		)
	}
	return nil
}

func validateTargetAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidAmount,
			"target amount must not be negative",
			domainerror.ErrInvalidAmount,
		)
	}
	return nil
}
