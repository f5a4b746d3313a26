// Package reconciliation contains ledger reconciliation and diagnostic use cases.
package reconciliation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/infra/metrics"
)

const (
	reconcileLockKey = "ledger:reconcile"

	// DefaultLockTTL bounds a single reconciliation run.
	DefaultLockTTL = 5 * time.Minute
)

// RecalculateAllInput represents the input for a full reconciliation.
type RecalculateAllInput struct {
	Actor entity.Actor
}

// RollupRepair describes a roll-up whose stored amount was rewritten.
type RollupRepair struct {
	PeriodStart    time.Time
	TargetID       uint
	PreviousAmount decimal.Decimal
	NewAmount      decimal.Decimal
	Created        bool
}

// Failure describes a target or period that could not be recomputed.
type Failure struct {
	TargetID    uint
	PeriodStart *time.Time
	Error       string
}

// RecalculateAllOutput is the report of a reconciliation run.
type RecalculateAllOutput struct {
	TargetsRecomputed int
	PeriodsRecomputed int
	Repairs           []RollupRepair
	Failures          []Failure
	StartedAt         time.Time
	FinishedAt        time.Time
}

// RecalculateAllUseCase recomputes every active target and every observed
// period's roll-up. Running it on consistent data repairs nothing.
type RecalculateAllUseCase struct {
	targetRepo adapter.TargetRepository
	engine     *aggregation.Engine
	dispatcher *aggregation.Dispatcher
	locker     adapter.Locker
	lockTTL    time.Duration
}

// NewRecalculateAllUseCase creates a new RecalculateAllUseCase instance. A
// nil locker runs without cross-instance exclusion.
func NewRecalculateAllUseCase(
	targetRepo adapter.TargetRepository,
	engine *aggregation.Engine,
	dispatcher *aggregation.Dispatcher,
	locker adapter.Locker,
	lockTTL time.Duration,
) *RecalculateAllUseCase {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &RecalculateAllUseCase{
		targetRepo: targetRepo,
		engine:     engine,
		dispatcher: dispatcher,
		locker:     locker,
		lockTTL:    lockTTL,
	}
}

// Execute performs the reconciliation.
func (uc *RecalculateAllUseCase) Execute(ctx context.Context, input RecalculateAllInput) (*RecalculateAllOutput, error) {
	if !input.Actor.IsRoot() {
		return nil, domainerror.NewForbiddenError("only root may run reconciliation")
	}

	if uc.locker != nil {
		lock, err := uc.locker.Obtain(ctx, reconcileLockKey, uc.lockTTL)
		switch {
		case errors.Is(err, adapter.ErrLockNotObtained):
			metrics.ReconciliationRuns.WithLabelValues("skipped").Inc()
			return nil, domainerror.NewLedgerError(
				domainerror.ErrCodeReconciliationRunning,
				"reconciliation already running",
				domainerror.ErrReconciliationRunning,
			)
		case err != nil:
			slog.WarnContext(ctx, "Reconciliation lock unavailable, continuing without it", "error", err)
		default:
			defer func() {
				if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
					slog.WarnContext(ctx, "Failed to release reconciliation lock", "error", err)
				}
			}()
		}
	}

	report, err := uc.run(ctx, input.Actor)
	if err != nil {
		metrics.ReconciliationRuns.WithLabelValues("failed").Inc()
		return nil, err
	}

	outcome := "success"
	if len(report.Failures) > 0 {
		outcome = "failed"
	}
	metrics.ReconciliationRuns.WithLabelValues(outcome).Inc()

	slog.InfoContext(ctx, "Reconciliation finished",
		"targets", report.TargetsRecomputed,
		"periods", report.PeriodsRecomputed,
		"repairs", len(report.Repairs),
		"failures", len(report.Failures),
		"duration", report.FinishedAt.Sub(report.StartedAt).String(),
	)

	return report, nil
}

func (uc *RecalculateAllUseCase) run(ctx context.Context, actor entity.Actor) (*RecalculateAllOutput, error) {
	report := &RecalculateAllOutput{StartedAt: time.Now().UTC()}

	active := entity.TargetStatusActive
	targets, err := uc.targetRepo.List(ctx, adapter.TargetFilter{Status: &active})
	if err != nil {
		return nil, domainerror.Classify(err)
	}

	for _, target := range targets {
		if uc.engine.IsRootOwner(target.OwnerID) {
			continue
		}
		if _, err := uc.engine.Recompute(ctx, target.ID); err != nil {
			report.Failures = append(report.Failures, Failure{TargetID: target.ID, Error: err.Error()})
			continue
		}
		report.TargetsRecomputed++
	}

	rootOwnerID := uc.engine.RootOwnerID()
	for _, period := range distinctPeriods(targets) {
		rollup, err := uc.engine.RecomputeRollup(ctx, period)
		if err != nil {
			p := period
			report.Failures = append(report.Failures, Failure{PeriodStart: &p, Error: err.Error()})
			continue
		}
		report.PeriodsRecomputed++

		if rollup == nil || !rollup.Repaired() {
			continue
		}

		report.Repairs = append(report.Repairs, RollupRepair{
			PeriodStart:    period,
			TargetID:       rollup.Aggregate.TargetID,
			PreviousAmount: rollup.PreviousAmount,
			NewAmount:      rollup.Aggregate.TargetAmount,
			Created:        rollup.Created,
		})

		if uc.dispatcher != nil {
			uc.dispatcher.Dispatch(aggregation.Effect{
				Actor:  actor,
				Action: entity.ChangeActionRecalculated,
				Subject: &entity.Target{
					ID:          rollup.Aggregate.TargetID,
					OwnerID:     rootOwnerID,
					PeriodStart: period,
				},
				EntityType: "target",
				EntityID:   rollup.Aggregate.TargetID,
				Payload: map[string]any{
					"period_start":    entity.PeriodKey(period),
					"previous_amount": rollup.PreviousAmount.String(),
					"target_amount":   rollup.Aggregate.TargetAmount.String(),
				},
			})
		}
	}

	report.FinishedAt = time.Now().UTC()
	return report, nil
}
