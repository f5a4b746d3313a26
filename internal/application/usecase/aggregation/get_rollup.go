// Package aggregation derives target aggregates and the per-period roll-up.
package aggregation

import (
	"context"
	"time"

	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

// GetRollupInput represents the input for reading a period's roll-up.
type GetRollupInput struct {
	PeriodStart time.Time
}

// GetRollupOutput represents the output of reading a period's roll-up.
type GetRollupOutput struct {
	Rollup *RollupResult
}

// GetRollupUseCase returns the roll-up of a period, re-derived from the ledgers.
type GetRollupUseCase struct {
	engine *Engine
}

// NewGetRollupUseCase creates a new GetRollupUseCase instance.
func NewGetRollupUseCase(engine *Engine) *GetRollupUseCase {
	return &GetRollupUseCase{
		engine: engine,
	}
}

// Execute refreshes and returns the roll-up for the period.
func (uc *GetRollupUseCase) Execute(ctx context.Context, input GetRollupInput) (*GetRollupOutput, error) {
	if input.PeriodStart.IsZero() {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidPeriod,
			"period start is required",
			domainerror.ErrInvalidPeriod,
		)
	}

	rollup, err := uc.engine.RecomputeRollup(ctx, input.PeriodStart)
	if err != nil {
		return nil, err
	}
	if rollup == nil {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeTargetNotFound,
			"no rollup target for period",
			domainerror.ErrTargetNotFound,
		)
	}

	return &GetRollupOutput{Rollup: rollup}, nil
}
