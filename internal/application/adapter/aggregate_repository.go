// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/domain/valueobject"
)

// RollupSnapshot is the fresh state of a period's roll-up.
type RollupSnapshot struct {
	TargetID       uint
	PreviousAmount decimal.Decimal
	TargetAmount   decimal.Decimal
	Totals         valueobject.LedgerTotals
	Constituents   int
	Created        bool
}

// AggregateRepository issues the aggregate SELECTs the engine derives values from.
type AggregateRepository interface {
	// TargetTotals sums the ledger rows of one target inside a single read snapshot.
	TargetTotals(ctx context.Context, targetID uint) (valueobject.LedgerTotals, error)

	// RefreshRollup rewrites the root owner's target amount for the period
	// with one UPDATE computed from a fresh aggregate SELECT, creating the
	// roll-up target when absent and the constituent sum is nonzero.
	// Returns nil when no roll-up target exists or was created.
	RefreshRollup(ctx context.Context, rootOwnerID uuid.UUID, periodStart time.Time) (*RollupSnapshot, error)

	// CachedRollupAmount returns the stored roll-up amount and the fresh
	// constituent sum without writing anything.
	CachedRollupAmount(ctx context.Context, rootOwnerID uuid.UUID, periodStart time.Time) (cached, fresh decimal.Decimal, found bool, err error)
}
