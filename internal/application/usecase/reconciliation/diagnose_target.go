// Package reconciliation contains ledger reconciliation and diagnostic use cases.
package reconciliation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/domain/valueobject"
)

// DiagnoseTargetInput represents the input for diagnosing a target.
type DiagnoseTargetInput struct {
	Actor    entity.Actor
	TargetID uint
}

// FormulaEvaluations compares the ways a target's progress can be summed.
type FormulaEvaluations struct {
	StoreAggregate   valueobject.Aggregate // aggregate SELECTs in the store
	InMemoryApproved decimal.Decimal       // approved entries summed in memory
	InMemoryNet      decimal.Decimal       // in-memory approved plus active transfers
	AllStatuses      decimal.Decimal       // every entry regardless of status
	Pending          decimal.Decimal
	Rejected         decimal.Decimal
}

// RollupComparison compares the cached roll-up amount with a fresh sum.
type RollupComparison struct {
	Found  bool
	Cached decimal.Decimal
	Fresh  decimal.Decimal
}

// DiagnoseTargetOutput is the diagnostic report of one target.
type DiagnoseTargetOutput struct {
	Target       *entity.Target
	Entries      []*entity.ProgressEntry
	TransfersIn  []*entity.FundTransfer
	TransfersOut []*entity.FundTransfer
	Formulas     FormulaEvaluations
	Rollup       RollupComparison
	Drift        bool
}

// DiagnoseTargetUseCase explains how a target's aggregate was derived. It
// never writes.
type DiagnoseTargetUseCase struct {
	targetRepo    adapter.TargetRepository
	progressRepo  adapter.ProgressRepository
	transferRepo  adapter.TransferRepository
	aggregateRepo adapter.AggregateRepository
	engine        *aggregation.Engine
}

// NewDiagnoseTargetUseCase creates a new DiagnoseTargetUseCase instance.
func NewDiagnoseTargetUseCase(
	targetRepo adapter.TargetRepository,
	progressRepo adapter.ProgressRepository,
	transferRepo adapter.TransferRepository,
	aggregateRepo adapter.AggregateRepository,
	engine *aggregation.Engine,
) *DiagnoseTargetUseCase {
	return &DiagnoseTargetUseCase{
		targetRepo:    targetRepo,
		progressRepo:  progressRepo,
		transferRepo:  transferRepo,
		aggregateRepo: aggregateRepo,
		engine:        engine,
	}
}

// Execute builds the diagnostic report.
func (uc *DiagnoseTargetUseCase) Execute(ctx context.Context, input DiagnoseTargetInput) (*DiagnoseTargetOutput, error) {
	if !input.Actor.IsRoot() {
		return nil, domainerror.NewForbiddenError("only root may diagnose targets")
	}

	target, err := uc.targetRepo.FindByID(ctx, input.TargetID)
	if err != nil {
		return nil, domainerror.Classify(err)
	}

	entries, err := uc.progressRepo.ListByTarget(ctx, target.ID, nil)
	if err != nil {
		return nil, domainerror.Classify(err)
	}

	transfers, err := uc.transferRepo.ListByTarget(ctx, target.ID)
	if err != nil {
		return nil, domainerror.Classify(err)
	}

	totals, err := uc.aggregateRepo.TargetTotals(ctx, target.ID)
	if err != nil {
		return nil, domainerror.Classify(err)
	}

	report := &DiagnoseTargetOutput{
		Target:  target,
		Entries: entries,
	}
	report.Formulas.StoreAggregate = valueobject.NewAggregate(target.ID, target.TargetAmount, totals)

	inMemory := valueobject.LedgerTotals{}
	for _, e := range entries {
		report.Formulas.AllStatuses = report.Formulas.AllStatuses.Add(e.Amount)
		switch e.Status {
		case entity.ProgressStatusApproved:
			inMemory.TotalProgress = inMemory.TotalProgress.Add(e.Amount)
		case entity.ProgressStatusPending:
			report.Formulas.Pending = report.Formulas.Pending.Add(e.Amount)
		case entity.ProgressStatusRejected:
			report.Formulas.Rejected = report.Formulas.Rejected.Add(e.Amount)
		}
	}

	for _, f := range transfers {
		if f.ToTargetID == target.ID {
			report.TransfersIn = append(report.TransfersIn, f)
			if f.IsActive() {
				inMemory.SharedIn = inMemory.SharedIn.Add(f.Amount)
			}
		}
		if f.FromTargetID == target.ID {
			report.TransfersOut = append(report.TransfersOut, f)
			if f.IsActive() {
				inMemory.SharedOut = inMemory.SharedOut.Add(f.Amount)
			}
		}
	}
	report.Formulas.InMemoryApproved = inMemory.TotalProgress
	report.Formulas.InMemoryNet = inMemory.NetAmount()

	cached, fresh, found, err := uc.aggregateRepo.CachedRollupAmount(ctx, uc.engine.RootOwnerID(), target.PeriodStart)
	if err != nil {
		return nil, domainerror.Classify(err)
	}
	report.Rollup = RollupComparison{Found: found, Cached: cached, Fresh: fresh}

	report.Drift = !totals.TotalProgress.Equal(inMemory.TotalProgress) ||
		!totals.NetAmount().Equal(inMemory.NetAmount()) ||
		(found && !cached.Equal(fresh))

	return report, nil
}
