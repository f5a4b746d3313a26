// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
	"github.com/target-ledger/backend/internal/domain/valueobject"
	"github.com/target-ledger/backend/internal/integration/persistence/model"
)

// refreshRollupSQL rewrites a roll-up amount from the live constituent sum.
// The statement is a pure function of ledger state so concurrent writers converge.
const refreshRollupSQL = `UPDATE targets SET target_amount = (
	SELECT COALESCE(SUM(c.target_amount), 0) FROM targets c
	WHERE c.status = ? AND c.period_start = ? AND c.owner_id <> ?
), updated_at = ? WHERE id = ?`

// aggregateRepository implements the adapter.AggregateRepository interface.
type aggregateRepository struct {
	db *gorm.DB
}

// NewAggregateRepository creates a new aggregate repository instance.
func NewAggregateRepository(db *gorm.DB) adapter.AggregateRepository {
	return &aggregateRepository{
		db: db,
	}
}

// TargetTotals sums one target's ledger inside a read snapshot.
func (r *aggregateRepository) TargetTotals(ctx context.Context, targetID uint) (valueobject.LedgerTotals, error) {
	var totals valueobject.LedgerTotals

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		totals, err = targetTotals(tx, targetID)
		return err
	}, snapshotOptions(r.db)...)
	if err != nil {
		return valueobject.LedgerTotals{}, storeError("sum target ledger", err)
	}
	return totals, nil
}

// RefreshRollup rewrites the period's roll-up amount. A concurrent creation of
// the same roll-up row is resolved by retrying against the winner's row.
func (r *aggregateRepository) RefreshRollup(ctx context.Context, rootOwnerID uuid.UUID, periodStart time.Time) (*adapter.RollupSnapshot, error) {
	periodStart = entity.NormalizePeriod(periodStart)

	var (
		snapshot *adapter.RollupSnapshot
		err      error
	)
	for attempt := 0; attempt < 2; attempt++ {
		snapshot, err = r.refreshRollup(ctx, rootOwnerID, periodStart)
		if !isUniqueViolation(err) {
			break
		}
	}
	if err != nil {
		return nil, storeError("refresh rollup", err)
	}
	return snapshot, nil
}

func (r *aggregateRepository) refreshRollup(ctx context.Context, rootOwnerID uuid.UUID, periodStart time.Time) (*adapter.RollupSnapshot, error) {
	var snapshot *adapter.RollupSnapshot

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		root, err := findRollupTarget(forUpdate(tx), rootOwnerID, periodStart)
		if err != nil {
			return err
		}

		created := false
		if root == nil {
			amount, _, err := constituentAmount(tx, rootOwnerID, periodStart)
			if err != nil {
				return err
			}
			if amount.IsZero() {
				return nil
			}

			root = model.TargetFromEntity(entity.NewTarget(
				rootOwnerID, decimal.Zero, entity.TargetCategoryOther, periodStart, nil, rootOwnerID,
			))
			if err := tx.Create(root).Error; err != nil {
				return err
			}
			created = true
		}

		previous := root.TargetAmount
		now := time.Now().UTC()
		if err := tx.Exec(refreshRollupSQL,
			string(entity.TargetStatusActive), periodStart, rootOwnerID, now, root.ID,
		).Error; err != nil {
			return err
		}

		amount, count, err := constituentAmount(tx, rootOwnerID, periodStart)
		if err != nil {
			return err
		}
		totals, err := rollupTotals(tx, rootOwnerID, periodStart)
		if err != nil {
			return err
		}

		snapshot = &adapter.RollupSnapshot{
			TargetID:       root.ID,
			PreviousAmount: previous,
			TargetAmount:   amount,
			Totals:         totals,
			Constituents:   count,
			Created:        created,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// CachedRollupAmount reads the stored roll-up amount next to the fresh sum.
func (r *aggregateRepository) CachedRollupAmount(ctx context.Context, rootOwnerID uuid.UUID, periodStart time.Time) (decimal.Decimal, decimal.Decimal, bool, error) {
	periodStart = entity.NormalizePeriod(periodStart)

	var (
		cached, fresh decimal.Decimal
		found         bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		root, err := findRollupTarget(tx, rootOwnerID, periodStart)
		if err != nil {
			return err
		}
		if root != nil {
			cached = root.TargetAmount
			found = true
		}

		fresh, _, err = constituentAmount(tx, rootOwnerID, periodStart)
		return err
	}, snapshotOptions(r.db)...)
	if err != nil {
		return decimal.Zero, decimal.Zero, false, storeError("read rollup", err)
	}
	return cached, fresh, found, nil
}

func findRollupTarget(tx *gorm.DB, rootOwnerID uuid.UUID, periodStart time.Time) (*model.TargetModel, error) {
	var root model.TargetModel
	err := tx.Where("owner_id = ? AND period_start = ? AND status = ?",
		rootOwnerID, periodStart, string(entity.TargetStatusActive)).
		First(&root).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &root, nil
}
