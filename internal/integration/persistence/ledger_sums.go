// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/target-ledger/backend/internal/domain/entity"
	"github.com/target-ledger/backend/internal/domain/valueobject"
	"github.com/target-ledger/backend/internal/integration/persistence/model"
)

type sumResult struct {
	Total decimal.Decimal
}

// countsAsApproved matches approved entries and legacy rows written without a
// status that have not been normalized yet.
func countsAsApproved(column string) string {
	return "(" + column + " = ? OR " + column + " IS NULL)"
}

// targetTotals sums one target's approved progress and active transfers.
func targetTotals(tx *gorm.DB, targetID uint) (valueobject.LedgerTotals, error) {
	var progress, sharedIn, sharedOut sumResult

	if err := tx.Model(&model.ProgressEntryModel{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("target_id = ?", targetID).
		Where(countsAsApproved("status"), string(entity.ProgressStatusApproved)).
		Scan(&progress).Error; err != nil {
		return valueobject.LedgerTotals{}, err
	}

	if err := tx.Model(&model.FundTransferModel{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("to_target_id = ? AND status = ?", targetID, string(entity.TransferStatusActive)).
		Scan(&sharedIn).Error; err != nil {
		return valueobject.LedgerTotals{}, err
	}

	if err := tx.Model(&model.FundTransferModel{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("from_target_id = ? AND status = ?", targetID, string(entity.TransferStatusActive)).
		Scan(&sharedOut).Error; err != nil {
		return valueobject.LedgerTotals{}, err
	}

	return valueobject.LedgerTotals{
		TotalProgress: progress.Total,
		SharedIn:      sharedIn.Total,
		SharedOut:     sharedOut.Total,
	}, nil
}

// constituentFilter restricts a joined targets alias t to the active non-root
// targets of a period.
const constituentFilter = "t.status = ? AND t.period_start = ? AND t.owner_id <> ?"

// constituentAmount sums the target amounts of a period's constituents.
func constituentAmount(tx *gorm.DB, rootOwnerID uuid.UUID, periodStart time.Time) (decimal.Decimal, int, error) {
	var row struct {
		Total decimal.Decimal
		Count int
	}
	if err := tx.Table("targets AS t").
		Select("COALESCE(SUM(t.target_amount), 0) AS total, COUNT(*) AS count").
		Where(constituentFilter, string(entity.TargetStatusActive), periodStart, rootOwnerID).
		Scan(&row).Error; err != nil {
		return decimal.Zero, 0, err
	}
	return row.Total, row.Count, nil
}

// rollupTotals sums the ledger totals of every constituent of a period.
func rollupTotals(tx *gorm.DB, rootOwnerID uuid.UUID, periodStart time.Time) (valueobject.LedgerTotals, error) {
	var progress, sharedIn, sharedOut sumResult
	args := []any{string(entity.TargetStatusActive), periodStart, rootOwnerID}

	if err := tx.Table("progress_entries AS p").
		Select("COALESCE(SUM(p.amount), 0) AS total").
		Joins("JOIN targets AS t ON t.id = p.target_id").
		Where(countsAsApproved("p.status"), string(entity.ProgressStatusApproved)).
		Where(constituentFilter, args...).
		Scan(&progress).Error; err != nil {
		return valueobject.LedgerTotals{}, err
	}

	if err := tx.Table("fund_transfers AS f").
		Select("COALESCE(SUM(f.amount), 0) AS total").
		Joins("JOIN targets AS t ON t.id = f.to_target_id").
		Where("f.status = ?", string(entity.TransferStatusActive)).
		Where(constituentFilter, args...).
		Scan(&sharedIn).Error; err != nil {
		return valueobject.LedgerTotals{}, err
	}

	if err := tx.Table("fund_transfers AS f").
		Select("COALESCE(SUM(f.amount), 0) AS total").
		Joins("JOIN targets AS t ON t.id = f.from_target_id").
		Where("f.status = ?", string(entity.TransferStatusActive)).
		Where(constituentFilter, args...).
		Scan(&sharedOut).Error; err != nil {
		return valueobject.LedgerTotals{}, err
	}

	return valueobject.LedgerTotals{
		TotalProgress: progress.Total,
		SharedIn:      sharedIn.Total,
		SharedOut:     sharedOut.Total,
	}, nil
}
