// Package aggregation derives target aggregates and the per-period roll-up.
package aggregation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/domain/valueobject"
	"github.com/target-ledger/backend/internal/infra/metrics"
)

// RollupResult is the outcome of refreshing one period's roll-up target.
type RollupResult struct {
	PeriodStart    time.Time
	Aggregate      valueobject.Aggregate
	PreviousAmount decimal.Decimal
	Constituents   int
	Created        bool
}

// Repaired reports whether the refresh changed the stored roll-up amount.
func (r *RollupResult) Repaired() bool {
	return r.Created || !r.PreviousAmount.Equal(r.Aggregate.TargetAmount)
}

// Engine derives aggregates from ledger rows. Derived values are never stored
// except the roll-up target amount.
type Engine struct {
	targetRepo    adapter.TargetRepository
	aggregateRepo adapter.AggregateRepository
	rootOwnerID   uuid.UUID
}

// NewEngine creates a new aggregation engine for the given root owner.
func NewEngine(targetRepo adapter.TargetRepository, aggregateRepo adapter.AggregateRepository, rootOwnerID uuid.UUID) *Engine {
	return &Engine{
		targetRepo:    targetRepo,
		aggregateRepo: aggregateRepo,
		rootOwnerID:   rootOwnerID,
	}
}

// RootOwnerID returns the owner of the roll-up targets.
func (e *Engine) RootOwnerID() uuid.UUID {
	return e.rootOwnerID
}

// IsRootOwner reports whether ownerID owns the roll-up targets.
func (e *Engine) IsRootOwner(ownerID uuid.UUID) bool {
	return ownerID == e.rootOwnerID
}

// Recompute derives the aggregate of one target from its ledger rows. The
// active roll-up target is refreshed from its constituents instead.
func (e *Engine) Recompute(ctx context.Context, targetID uint) (*valueobject.Aggregate, error) {
	started := time.Now()
	defer metrics.ObserveRecompute("target", started)

	target, err := e.targetRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, domainerror.Classify(err)
	}

	if e.IsRootOwner(target.OwnerID) && target.IsActive() {
		rollup, err := e.RecomputeRollup(ctx, target.PeriodStart)
		if err != nil {
			return nil, err
		}
		if rollup != nil && rollup.Aggregate.TargetID == target.ID {
			return &rollup.Aggregate, nil
		}
	}

	totals, err := e.aggregateRepo.TargetTotals(ctx, target.ID)
	if err != nil {
		return nil, domainerror.Classify(err)
	}

	aggregate := valueobject.NewAggregate(target.ID, target.TargetAmount, totals)
	return &aggregate, nil
}

// RecomputeRollup rewrites the period's roll-up amount from the live sum of
// its constituents. Returns nil when the period has no roll-up target and
// nothing to aggregate.
func (e *Engine) RecomputeRollup(ctx context.Context, periodStart time.Time) (*RollupResult, error) {
	started := time.Now()
	defer metrics.ObserveRecompute("rollup", started)

	periodStart = entity.NormalizePeriod(periodStart)
	snapshot, err := e.aggregateRepo.RefreshRollup(ctx, e.rootOwnerID, periodStart)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh rollup for %s: %w", entity.PeriodKey(periodStart), domainerror.Classify(err))
	}
	if snapshot == nil {
		return nil, nil
	}

	result := &RollupResult{
		PeriodStart:    periodStart,
		Aggregate:      valueobject.NewAggregate(snapshot.TargetID, snapshot.TargetAmount, snapshot.Totals),
		PreviousAmount: snapshot.PreviousAmount,
		Constituents:   snapshot.Constituents,
		Created:        snapshot.Created,
	}

	if result.Repaired() {
		metrics.RollupRepairs.Inc()
		slog.InfoContext(ctx, "Rollup target refreshed",
			"target_id", snapshot.TargetID,
			"period_start", entity.PeriodKey(periodStart),
			"previous_amount", snapshot.PreviousAmount.String(),
			"target_amount", snapshot.TargetAmount.String(),
			"created", snapshot.Created,
		)
	}

	return result, nil
}
