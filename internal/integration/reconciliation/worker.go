// Package reconciliation runs the periodic ledger reconciliation.
package reconciliation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	recon "github.com/target-ledger/backend/internal/application/usecase/reconciliation"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

// Runner executes one reconciliation pass.
type Runner interface {
	Execute(ctx context.Context, input recon.RecalculateAllInput) (*recon.RecalculateAllOutput, error)
}

// Worker periodically recalculates every aggregate.
type Worker struct {
	runner   Runner
	actor    entity.Actor
	interval time.Duration
	timeout  time.Duration
}

// WorkerConfig holds configuration for the reconciliation worker.
type WorkerConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Interval: time.Hour,
		Timeout:  5 * time.Minute,
	}
}

// NewWorker creates a new reconciliation worker acting as the root owner.
func NewWorker(runner Runner, rootOwnerID uuid.UUID, config WorkerConfig) *Worker {
	defaults := DefaultWorkerConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &Worker{
		runner: runner,
		actor: entity.Actor{
			OwnerID:     rootOwnerID,
			Role:        entity.RoleRoot,
			DisplayName: "reconciliation-worker",
		},
		interval: config.Interval,
		timeout:  config.Timeout,
	}
}

// Start begins the worker loop. It blocks until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Reconciliation worker started", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Reconciliation worker shutting down")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs one reconciliation pass and logs its outcome.
func (w *Worker) RunOnce(ctx context.Context) *recon.RecalculateAllOutput {
	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	report, err := w.runner.Execute(runCtx, recon.RecalculateAllInput{Actor: w.actor})
	if err != nil {
		if errors.Is(err, domainerror.ErrReconciliationRunning) {
			slog.Debug("Reconciliation skipped, another instance is running")
			return nil
		}
		slog.Error("Reconciliation failed", "error", err)
		return nil
	}

	for _, repair := range report.Repairs {
		slog.Warn("Rollup drift repaired",
			"target_id", repair.TargetID,
			"period_start", entity.PeriodKey(repair.PeriodStart),
			"previous_amount", repair.PreviousAmount.String(),
			"target_amount", repair.NewAmount.String(),
		)
	}
	for _, failure := range report.Failures {
		slog.Error("Reconciliation item failed",
			"target_id", failure.TargetID,
			"error", failure.Error,
		)
	}

	return report
}
