// Package usecasetest wires use cases against an in-memory ledger for tests.
package usecasetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/application/adapter/adaptertest"
	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/domain/valueobject"
	"github.com/target-ledger/backend/internal/integration/persistence/model"
	"github.com/target-ledger/backend/internal/integration/persistence/persistencetest"
)

// Period is the default period start used by tests.
var Period = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Harness holds a ledger database with a real engine and dispatcher.
type Harness struct {
	*persistencetest.Ledger

	Root       entity.Actor
	Engine     *aggregation.Engine
	Notifier   *adaptertest.RecordingNotifier
	Dispatcher *aggregation.Dispatcher
}

// New creates a Harness. Pending side effects are drained before the
// database is closed.
func New(t testing.TB) *Harness {
	t.Helper()

	ledger := persistencetest.NewLedger(t)
	root := entity.Actor{OwnerID: uuid.New(), Role: entity.RoleRoot, DisplayName: "root"}
	engine := aggregation.NewEngine(ledger.Targets, ledger.Aggregates, root.OwnerID)
	notifier := &adaptertest.RecordingNotifier{}
	dispatcher := aggregation.NewDispatcher(engine, notifier, ledger.Audit, 5*time.Second)
	t.Cleanup(dispatcher.Wait)

	return &Harness{
		Ledger:     ledger,
		Root:       root,
		Engine:     engine,
		Notifier:   notifier,
		Dispatcher: dispatcher,
	}
}

// Owner returns a fresh non-root actor.
func (h *Harness) Owner() entity.Actor {
	return entity.Actor{OwnerID: uuid.New(), Role: entity.RoleOwner, DisplayName: "owner"}
}

// Settle waits for every dispatched side effect.
func (h *Harness) Settle() {
	h.Dispatcher.Wait()
}

// Amount is shorthand for an integral decimal.
func Amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// SeedTarget stores an active target of the default period directly.
func (h *Harness) SeedTarget(t testing.TB, ownerID uuid.UUID, amount int64) *entity.Target {
	t.Helper()
	target := entity.NewTarget(ownerID, Amount(amount), entity.TargetCategoryEmployee, Period, nil, h.Root.OwnerID)
	if err := h.Targets.Create(context.Background(), target); err != nil {
		t.Fatalf("failed to seed target: %v", err)
	}
	return target
}

// SeedEntry stores a progress entry and, unless status is pending, decides it.
func (h *Harness) SeedEntry(t testing.TB, target *entity.Target, amount int64, status entity.ProgressStatus) *entity.ProgressEntry {
	t.Helper()
	ctx := context.Background()
	entry := entity.NewProgressEntry(target, Amount(amount), target.Category, Period, nil)
	if err := h.Progress.Create(ctx, entry); err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}
	if status == entity.ProgressStatusPending {
		return entry
	}
	result, err := h.Progress.Decide(ctx, entry.ID, status, h.Root.OwnerID)
	if err != nil {
		t.Fatalf("failed to decide seeded entry: %v", err)
	}
	return result.Entry
}

// Aggregate recomputes the target and fails the test on error.
func (h *Harness) Aggregate(t testing.TB, targetID uint) valueobject.Aggregate {
	t.Helper()
	aggregate, err := h.Engine.Recompute(context.Background(), targetID)
	if err != nil {
		t.Fatalf("failed to recompute target %d: %v", targetID, err)
	}
	return *aggregate
}

// StoredAmount reads the persisted target amount without recomputing.
func (h *Harness) StoredAmount(t testing.TB, targetID uint) decimal.Decimal {
	t.Helper()
	var m model.TargetModel
	if err := h.DB.First(&m, targetID).Error; err != nil {
		t.Fatalf("failed to read target %d: %v", targetID, err)
	}
	return m.TargetAmount
}

// Rollup returns the active roll-up target of the default period, or nil.
func (h *Harness) Rollup(t testing.TB) *entity.Target {
	t.Helper()
	p := Period
	target, err := h.Targets.FindActive(context.Background(), h.Root.OwnerID, &p)
	if err != nil {
		t.Fatalf("failed to read roll-up target: %v", err)
	}
	return target
}

// CorruptAmount overwrites a stored target amount, simulating a lost update.
func (h *Harness) CorruptAmount(t testing.TB, targetID uint, amount int64) {
	t.Helper()
	if err := h.DB.Model(&model.TargetModel{}).Where("id = ?", targetID).
		Update("target_amount", Amount(amount)).Error; err != nil {
		t.Fatalf("failed to corrupt target %d: %v", targetID, err)
	}
}

// CodeOf returns the ledger error code of err, or "" when uncoded.
func CodeOf(err error) domainerror.LedgerErrorCode {
	var ledgerErr *domainerror.LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr.Code
	}
	return ""
}
