// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/target-ledger/backend/internal/domain/entity"
	"github.com/target-ledger/backend/internal/integration/persistence/model"
)

// MigrateLedger creates or updates the ledger tables and normalizes legacy rows.
func MigrateLedger(ctx context.Context, db *gorm.DB) (int64, error) {
	if err := db.WithContext(ctx).AutoMigrate(model.LedgerModels()...); err != nil {
		return 0, fmt.Errorf("migrate ledger schema: %w", err)
	}
	return NormalizeLegacyProgressStatus(ctx, db)
}

// NormalizeLegacyProgressStatus sets the status of progress entries written
// before the approval workflow to approved. Returns the number of rows changed.
func NormalizeLegacyProgressStatus(ctx context.Context, db *gorm.DB) (int64, error) {
	result := db.WithContext(ctx).
		Model(&model.ProgressEntryModel{}).
		Where("status IS NULL").
		Update("status", string(entity.ProgressStatusApproved))
	if result.Error != nil {
		return 0, storeError("normalize legacy progress status", result.Error)
	}
	return result.RowsAffected, nil
}
