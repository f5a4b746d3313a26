package target_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/target-ledger/backend/internal/application/usecase/target"
	"github.com/target-ledger/backend/internal/application/usecase/usecasetest"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

func TestCreateTargetUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	period := usecasetest.Period

	t.Run("creates active target and refreshes roll-up", func(t *testing.T) {
		h := usecasetest.New(t)
		uc := target.NewCreateTargetUseCase(h.Targets, h.Dispatcher)
		alice := h.Owner()

		output, err := uc.Execute(ctx, target.CreateTargetInput{
			Actor:       alice,
			Amount:      usecasetest.Amount(1000),
			Category:    entity.TargetCategoryEmployee,
			PeriodStart: period,
			Notes:       "  q1  ",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		h.Settle()

		if output.Target.ID == 0 {
			t.Fatal("expected target to be persisted")
		}
		if output.Target.OwnerID != alice.OwnerID {
			t.Errorf("expected owner to default to actor, got %s", output.Target.OwnerID)
		}
		if output.Target.Status != entity.TargetStatusActive {
			t.Errorf("expected status active, got %s", output.Target.Status)
		}
		if output.Target.Notes != "q1" {
			t.Errorf("expected trimmed notes, got %q", output.Target.Notes)
		}
		if !output.Aggregate.RemainingAmount.Equal(usecasetest.Amount(1000)) {
			t.Errorf("expected remaining 1000, got %s", output.Aggregate.RemainingAmount)
		}

		rollup := h.Rollup(t)
		if rollup == nil {
			t.Fatal("expected roll-up target to be created")
		}
		if !rollup.TargetAmount.Equal(usecasetest.Amount(1000)) {
			t.Errorf("expected roll-up amount 1000, got %s", rollup.TargetAmount)
		}

		actions := h.Notifier.Actions()
		if len(actions) != 1 || actions[0] != entity.ChangeActionCreated {
			t.Errorf("expected one created event, got %v", actions)
		}
		audit := h.AuditActions(t)
		if len(audit) != 1 || audit[0] != string(entity.ChangeActionCreated) {
			t.Errorf("expected one created audit record, got %v", audit)
		}
	})

	t.Run("root target does not create a roll-up of itself", func(t *testing.T) {
		h := usecasetest.New(t)
		uc := target.NewCreateTargetUseCase(h.Targets, h.Dispatcher)

		output, err := uc.Execute(ctx, target.CreateTargetInput{
			Actor:       h.Root,
			Amount:      usecasetest.Amount(0),
			Category:    entity.TargetCategoryOther,
			PeriodStart: period,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		h.Settle()

		rollup := h.Rollup(t)
		if rollup == nil || rollup.ID != output.Target.ID {
			t.Fatalf("expected the created target to be the roll-up, got %+v", rollup)
		}
		if !rollup.TargetAmount.IsZero() {
			t.Errorf("expected roll-up amount 0, got %s", rollup.TargetAmount)
		}
	})

	t.Run("root may create for another owner", func(t *testing.T) {
		h := usecasetest.New(t)
		uc := target.NewCreateTargetUseCase(h.Targets, h.Dispatcher)
		owner := uuid.New()

		output, err := uc.Execute(ctx, target.CreateTargetInput{
			Actor:       h.Root,
			OwnerID:     owner,
			Amount:      usecasetest.Amount(10),
			Category:    entity.TargetCategoryStudent,
			PeriodStart: period,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.Target.OwnerID != owner || output.Target.CreatedBy != h.Root.OwnerID {
			t.Errorf("expected owner %s created by root, got %s by %s", owner, output.Target.OwnerID, output.Target.CreatedBy)
		}
	})

	end := period.AddDate(0, 0, -1)
	cases := []struct {
		name     string
		mutate   func(t *testing.T, h *usecasetest.Harness, in *target.CreateTargetInput)
		expected domainerror.LedgerErrorCode
	}{
		{
			name: "owner cannot create for someone else",
			mutate: func(_ *testing.T, _ *usecasetest.Harness, in *target.CreateTargetInput) {
				in.OwnerID = uuid.New()
			},
			expected: domainerror.ErrCodeForbidden,
		},
		{
			name: "negative amount",
			mutate: func(_ *testing.T, _ *usecasetest.Harness, in *target.CreateTargetInput) {
				in.Amount = usecasetest.Amount(-1)
			},
			expected: domainerror.ErrCodeInvalidAmount,
		},
		{
			name: "unknown category",
			mutate: func(_ *testing.T, _ *usecasetest.Harness, in *target.CreateTargetInput) {
				in.Category = "marketing"
			},
			expected: domainerror.ErrCodeInvalidCategory,
		},
		{
			name: "missing period start",
			mutate: func(_ *testing.T, _ *usecasetest.Harness, in *target.CreateTargetInput) {
				in.PeriodStart = time.Time{}
			},
			expected: domainerror.ErrCodeMissingFields,
		},
		{
			name: "period end before start",
			mutate: func(_ *testing.T, _ *usecasetest.Harness, in *target.CreateTargetInput) {
				in.PeriodEnd = &end
			},
			expected: domainerror.ErrCodeInvalidPeriod,
		},
		{
			name: "duplicate active target",
			mutate: func(t *testing.T, h *usecasetest.Harness, in *target.CreateTargetInput) {
				h.SeedTarget(t, in.Actor.OwnerID, 50)
			},
			expected: domainerror.ErrCodeDuplicateActiveTarget,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := usecasetest.New(t)
			uc := target.NewCreateTargetUseCase(h.Targets, h.Dispatcher)
			input := target.CreateTargetInput{
				Actor:       h.Owner(),
				Amount:      usecasetest.Amount(100),
				Category:    entity.TargetCategoryEmployee,
				PeriodStart: period,
			}
			tc.mutate(t, h, &input)

			_, err := uc.Execute(ctx, input)
			if code := usecasetest.CodeOf(err); code != tc.expected {
				t.Errorf("expected code %s, got %s (%v)", tc.expected, code, err)
			}
		})
	}
}
