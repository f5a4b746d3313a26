package aggregation_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/target-ledger/backend/internal/application/adapter/adaptertest"
	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/application/usecase/progress"
	"github.com/target-ledger/backend/internal/application/usecase/target"
	"github.com/target-ledger/backend/internal/application/usecase/transfer"
	"github.com/target-ledger/backend/internal/application/usecase/usecasetest"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/infra/metrics"
)

func TestEngine_Recompute(t *testing.T) {
	ctx := context.Background()

	t.Run("is idempotent", func(t *testing.T) {
		h := usecasetest.New(t)
		target := h.SeedTarget(t, uuid.New(), 1000)
		h.SeedEntry(t, target, 300, entity.ProgressStatusApproved)

		first := h.Aggregate(t, target.ID)
		second := h.Aggregate(t, target.ID)
		if !first.Equal(second) {
			t.Errorf("expected repeated recompute to match, got %+v and %+v", first, second)
		}
		if !first.ProgressPercentage.Equal(usecasetest.Amount(30)) {
			t.Errorf("expected percentage 30, got %s", first.ProgressPercentage)
		}
	})

	t.Run("missing target", func(t *testing.T) {
		h := usecasetest.New(t)
		_, err := h.Engine.Recompute(ctx, 12345)
		if code := usecasetest.CodeOf(err); code != domainerror.ErrCodeTargetNotFound {
			t.Errorf("expected %s, got %s", domainerror.ErrCodeTargetNotFound, code)
		}
	})

	t.Run("inactive root target is not treated as the roll-up", func(t *testing.T) {
		h := usecasetest.New(t)
		h.SeedTarget(t, uuid.New(), 1000)
		old := h.SeedTarget(t, h.Root.OwnerID, 5)
		if _, err := h.Targets.Update(ctx, old.ID, func(tg *entity.Target) error {
			tg.Status = entity.TargetStatusCancelled
			return nil
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		aggregate := h.Aggregate(t, old.ID)
		if !aggregate.TargetAmount.Equal(usecasetest.Amount(5)) {
			t.Errorf("expected cancelled root target to keep amount 5, got %s", aggregate.TargetAmount)
		}
	})
}

func TestEngine_RecomputeRollup(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing to aggregate", func(t *testing.T) {
		h := usecasetest.New(t)
		result, err := h.Engine.RecomputeRollup(ctx, usecasetest.Period)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != nil {
			t.Errorf("expected no roll-up, got %+v", result)
		}
	})

	t.Run("equals the sum of active constituents", func(t *testing.T) {
		h := usecasetest.New(t)
		a := h.SeedTarget(t, uuid.New(), 1000)
		b := h.SeedTarget(t, uuid.New(), 500)
		h.SeedEntry(t, a, 300, entity.ProgressStatusApproved)
		h.SeedEntry(t, b, 50, entity.ProgressStatusPending)
		cancelled := h.SeedTarget(t, uuid.New(), 999)
		if _, err := h.Targets.Update(ctx, cancelled.ID, func(tg *entity.Target) error {
			tg.Status = entity.TargetStatusCancelled
			return nil
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Mid-day input lands on the same period.
		result, err := h.Engine.RecomputeRollup(ctx, usecasetest.Period.Add(13*time.Hour))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result == nil || !result.Created || result.Constituents != 2 {
			t.Fatalf("expected created roll-up with 2 constituents, got %+v", result)
		}
		if !result.Aggregate.TargetAmount.Equal(usecasetest.Amount(1500)) {
			t.Errorf("expected target amount 1500, got %s", result.Aggregate.TargetAmount)
		}
		if !result.Aggregate.NetAmount.Equal(usecasetest.Amount(300)) {
			t.Errorf("expected net 300, got %s", result.Aggregate.NetAmount)
		}
		if !result.Aggregate.ProgressPercentage.Equal(usecasetest.Amount(20)) {
			t.Errorf("expected percentage 20, got %s", result.Aggregate.ProgressPercentage)
		}

		again, err := h.Engine.RecomputeRollup(ctx, usecasetest.Period)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Repaired() {
			t.Errorf("expected second refresh to change nothing, got %+v", again)
		}
		if again.Aggregate.TargetID != result.Aggregate.TargetID {
			t.Errorf("expected the same roll-up target, got %d and %d", result.Aggregate.TargetID, again.Aggregate.TargetID)
		}
	})

	t.Run("recompute of the roll-up target delegates to the refresh", func(t *testing.T) {
		h := usecasetest.New(t)
		h.SeedTarget(t, uuid.New(), 700)
		root := h.SeedTarget(t, h.Root.OwnerID, 0)

		aggregate := h.Aggregate(t, root.ID)
		if !aggregate.TargetAmount.Equal(usecasetest.Amount(700)) {
			t.Errorf("expected roll-up amount 700, got %s", aggregate.TargetAmount)
		}
		if stored := h.StoredAmount(t, root.ID); !stored.Equal(usecasetest.Amount(700)) {
			t.Errorf("expected stored amount 700, got %s", stored)
		}
	})
}

func TestEngine_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()

	t.Run("roll-up converges to the sum of constituents", func(t *testing.T) {
		h := usecasetest.New(t)
		sender, recipient := h.Owner(), h.Owner()
		x := h.SeedTarget(t, sender.OwnerID, 500)
		h.SeedTarget(t, recipient.OwnerID, 500)
		h.SeedEntry(t, x, 30, entity.ProgressStatusApproved)
		pending := make([]*entity.ProgressEntry, 5)
		for i := range pending {
			pending[i] = h.SeedEntry(t, x, 20, entity.ProgressStatusPending)
		}

		create := target.NewCreateTargetUseCase(h.Targets, h.Dispatcher)
		decide := progress.NewDecideProgressUseCase(h.Targets, h.Progress, h.Dispatcher)
		share := transfer.NewTransferFundsUseCase(h.Targets, h.Transfers, nil, 0, h.Dispatcher)

		const owners = 20
		var wg sync.WaitGroup
		errs := make(chan error, owners+len(pending)+3)
		for i := 0; i < owners; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				owner := h.Owner()
				_, err := create.Execute(ctx, target.CreateTargetInput{
					Actor:       owner,
					Amount:      usecasetest.Amount(100),
					Category:    entity.TargetCategoryEmployee,
					PeriodStart: usecasetest.Period,
				})
				errs <- err
			}()
		}
		for _, entry := range pending {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := decide.Execute(ctx, progress.DecideProgressInput{
					Actor:    h.Root,
					EntryID:  entry.ID,
					Decision: entity.ProgressStatusApproved,
				})
				errs <- err
			}()
		}
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := share.Execute(ctx, transfer.TransferFundsInput{
					Actor:     sender,
					ToOwnerID: recipient.OwnerID,
					Amount:    usecasetest.Amount(10),
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		h.Settle()

		for err := range errs {
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}

		rollup := h.Rollup(t)
		if rollup == nil || !rollup.TargetAmount.Equal(usecasetest.Amount(3000)) {
			t.Fatalf("expected roll-up amount 3000, got %+v", rollup)
		}

		result, err := h.Engine.RecomputeRollup(ctx, usecasetest.Period)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Repaired() {
			t.Errorf("expected settled roll-up to need no repair, previous %s now %s", result.PreviousAmount, result.Aggregate.TargetAmount)
		}
		if !result.PreviousAmount.Equal(usecasetest.Amount(3000)) {
			t.Errorf("expected previous amount 3000, got %s", result.PreviousAmount)
		}
		if result.Constituents != owners+2 {
			t.Errorf("expected %d constituents, got %d", owners+2, result.Constituents)
		}
		if !result.Aggregate.NetAmount.Equal(usecasetest.Amount(130)) {
			t.Errorf("expected roll-up net 130, got %s", result.Aggregate.NetAmount)
		}
	})
}

func TestGetRollupUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the refreshed roll-up", func(t *testing.T) {
		h := usecasetest.New(t)
		h.SeedTarget(t, uuid.New(), 250)
		uc := aggregation.NewGetRollupUseCase(h.Engine)

		output, err := uc.Execute(ctx, aggregation.GetRollupInput{PeriodStart: usecasetest.Period})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !output.Rollup.Aggregate.TargetAmount.Equal(usecasetest.Amount(250)) {
			t.Errorf("expected 250, got %s", output.Rollup.Aggregate.TargetAmount)
		}
	})

	t.Run("errors", func(t *testing.T) {
		h := usecasetest.New(t)
		uc := aggregation.NewGetRollupUseCase(h.Engine)

		_, err := uc.Execute(ctx, aggregation.GetRollupInput{})
		if code := usecasetest.CodeOf(err); code != domainerror.ErrCodeInvalidPeriod {
			t.Errorf("expected %s, got %s", domainerror.ErrCodeInvalidPeriod, code)
		}
		_, err = uc.Execute(ctx, aggregation.GetRollupInput{PeriodStart: usecasetest.Period})
		if code := usecasetest.CodeOf(err); code != domainerror.ErrCodeTargetNotFound {
			t.Errorf("expected %s, got %s", domainerror.ErrCodeTargetNotFound, code)
		}
	})
}

func TestDispatcher(t *testing.T) {
	t.Run("runs recompute notify and audit", func(t *testing.T) {
		h := usecasetest.New(t)
		target := h.SeedTarget(t, uuid.New(), 400)

		h.Dispatcher.Dispatch(aggregation.Effect{
			Actor:      h.Root,
			Action:     entity.ChangeActionUpdated,
			Subject:    target,
			Recompute:  []*entity.Target{target},
			EntityType: "target",
			EntityID:   target.ID,
			Payload:    map[string]any{"notes": "x"},
		})
		h.Settle()

		if rollup := h.Rollup(t); rollup == nil || !rollup.TargetAmount.Equal(usecasetest.Amount(400)) {
			t.Errorf("expected roll-up amount 400, got %+v", rollup)
		}
		events := h.Notifier.Events()
		if len(events) != 1 || events[0].TargetID != target.ID || events[0].OwnerID != target.OwnerID {
			t.Errorf("expected one event about target %d, got %+v", target.ID, events)
		}
		if audit := h.AuditActions(t); len(audit) != 1 || audit[0] != string(entity.ChangeActionUpdated) {
			t.Errorf("expected one audit record, got %v", audit)
		}
	})

	t.Run("logs recomputed aggregates at debug level", func(t *testing.T) {
		var buf bytes.Buffer
		previous := slog.Default()
		slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
		t.Cleanup(func() { slog.SetDefault(previous) })

		h := usecasetest.New(t)
		target := h.SeedTarget(t, uuid.New(), 400)
		h.SeedEntry(t, target, 100, entity.ProgressStatusApproved)

		h.Dispatcher.Dispatch(aggregation.Effect{
			Actor:     h.Root,
			Action:    entity.ChangeActionUpdated,
			Recompute: []*entity.Target{target},
		})
		h.Settle()

		var found bool
		for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
			var record map[string]any
			if err := json.Unmarshal(line, &record); err != nil || record["msg"] != "Target recomputed" {
				continue
			}
			found = true
			if record["net_amount"] != "100" || record["percentage"] != "25" {
				t.Errorf("expected net 100 and percentage 25, got %v", record)
			}
		}
		if !found {
			t.Errorf("expected a debug record for the recomputed target, got %s", buf.String())
		}
	})

	t.Run("failures are counted and do not stop later effects", func(t *testing.T) {
		h := usecasetest.New(t)
		notifier := &adaptertest.RecordingNotifier{Err: errors.New("broker down")}
		dispatcher := aggregation.NewDispatcher(h.Engine, notifier, h.Audit, time.Second)
		before := testutil.ToFloat64(metrics.SideEffectFailures.WithLabelValues("notify"))
		recomputeBefore := testutil.ToFloat64(metrics.SideEffectFailures.WithLabelValues("recompute"))

		dispatcher.Dispatch(aggregation.Effect{
			Actor:      h.Root,
			Action:     entity.ChangeActionDeleted,
			Recompute:  []*entity.Target{{ID: 999, OwnerID: uuid.New(), PeriodStart: usecasetest.Period}},
			EntityType: "target",
			EntityID:   999,
		})
		dispatcher.Wait()

		if got := testutil.ToFloat64(metrics.SideEffectFailures.WithLabelValues("notify")); got != before+1 {
			t.Errorf("expected notify failures to grow by 1, got %v -> %v", before, got)
		}
		if got := testutil.ToFloat64(metrics.SideEffectFailures.WithLabelValues("recompute")); got != recomputeBefore+1 {
			t.Errorf("expected recompute failures to grow by 1, got %v -> %v", recomputeBefore, got)
		}
		if audit := h.AuditActions(t); len(audit) != 1 {
			t.Errorf("expected audit to run after failures, got %v", audit)
		}
	})

	t.Run("nil collaborators are skipped", func(t *testing.T) {
		h := usecasetest.New(t)
		dispatcher := aggregation.NewDispatcher(h.Engine, nil, nil, 0)

		dispatcher.Dispatch(aggregation.Effect{Actor: h.Root, Action: entity.ChangeActionRecalculated})
		dispatcher.Wait()

		if audit := h.AuditActions(t); len(audit) != 0 {
			t.Errorf("expected no audit records, got %v", audit)
		}
	})
}
