// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/integration/persistence/model"
)

// targetRepository implements the adapter.TargetRepository interface.
type targetRepository struct {
	db *gorm.DB
}

// NewTargetRepository creates a new target repository instance.
func NewTargetRepository(db *gorm.DB) adapter.TargetRepository {
	return &targetRepository{
		db: db,
	}
}

// Create inserts a new target after checking the one-active-target invariant.
func (r *targetRepository) Create(ctx context.Context, target *entity.Target) error {
	targetModel := model.TargetFromEntity(target)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if target.IsActive() {
			exists, err := activeTargetExists(tx, target.OwnerID, target.PeriodStart, 0)
			if err != nil {
				return err
			}
			if exists {
				return domainerror.ErrDuplicateActiveTarget
			}
		}
		return tx.Create(targetModel).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerror.ErrDuplicateActiveTarget
		}
		return storeError("create target", err)
	}

	target.ID = targetModel.ID
	return nil
}

// FindByID retrieves a target by its ID.
func (r *targetRepository) FindByID(ctx context.Context, id uint) (*entity.Target, error) {
	var targetModel model.TargetModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&targetModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrTargetNotFound
		}
		return nil, storeError("find target", result.Error)
	}
	return targetModel.ToEntity(), nil
}

// FindActive retrieves the owner's active target for a period, or the latest one.
func (r *targetRepository) FindActive(ctx context.Context, ownerID uuid.UUID, periodStart *time.Time) (*entity.Target, error) {
	query := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, string(entity.TargetStatusActive))
	if periodStart != nil {
		query = query.Where("period_start = ?", entity.NormalizePeriod(*periodStart))
	}

	var targetModel model.TargetModel
	result := query.Order("period_start DESC").Order("id DESC").First(&targetModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError("find active target", result.Error)
	}
	return targetModel.ToEntity(), nil
}

// List retrieves targets matching the filter, newest period first.
func (r *targetRepository) List(ctx context.Context, filter adapter.TargetFilter) ([]*entity.Target, error) {
	query := r.db.WithContext(ctx).Model(&model.TargetModel{})
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.PeriodStart != nil {
		query = query.Where("period_start = ?", entity.NormalizePeriod(*filter.PeriodStart))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var targetModels []model.TargetModel
	if err := query.Order("period_start DESC").Order("id ASC").Find(&targetModels).Error; err != nil {
		return nil, storeError("list targets", err)
	}

	targets := make([]*entity.Target, len(targetModels))
	for i := range targetModels {
		targets[i] = targetModels[i].ToEntity()
	}
	return targets, nil
}

// Extend freezes the current row as extended and inserts the successor.
func (r *targetRepository) Extend(ctx context.Context, id uint, build func(current *entity.Target) (*entity.Target, error)) (*entity.Target, error) {
	var successor *entity.Target

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockTarget(tx, id)
		if err != nil {
			return err
		}

		next, err := build(current)
		if err != nil {
			return err
		}

		if err := tx.Model(&model.TargetModel{}).
			Where("id = ?", current.ID).
			Updates(map[string]any{
				"status":     string(entity.TargetStatusExtended),
				"updated_at": time.Now().UTC(),
			}).Error; err != nil {
			return err
		}

		nextModel := model.TargetFromEntity(next)
		if err := tx.Create(nextModel).Error; err != nil {
			return err
		}
		next.ID = nextModel.ID
		successor = next
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainerror.ErrDuplicateActiveTarget
		}
		return nil, storeError("extend target", err)
	}
	return successor, nil
}

// Update applies mutate to the stored target and re-checks the invariant
// whenever the row stays or becomes active.
func (r *targetRepository) Update(ctx context.Context, id uint, mutate func(target *entity.Target) error) (*entity.Target, error) {
	var updated *entity.Target

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockTarget(tx, id)
		if err != nil {
			return err
		}

		if err := mutate(current); err != nil {
			return err
		}
		current.UpdatedAt = time.Now().UTC()

		if current.IsActive() {
			exists, err := activeTargetExists(tx, current.OwnerID, current.PeriodStart, current.ID)
			if err != nil {
				return err
			}
			if exists {
				return domainerror.ErrDuplicateActiveTarget
			}
		}

		if err := tx.Save(model.TargetFromEntity(current)).Error; err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainerror.ErrDuplicateActiveTarget
		}
		return nil, storeError("update target", err)
	}
	return updated, nil
}

// Delete removes the target together with its progress entries.
func (r *targetRepository) Delete(ctx context.Context, id uint) (*entity.Target, error) {
	var deleted *entity.Target

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockTarget(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Where("target_id = ?", id).Delete(&model.ProgressEntryModel{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.TargetModel{}, "id = ?", id).Error; err != nil {
			return err
		}
		deleted = current
		return nil
	})
	if err != nil {
		return nil, storeError("delete target", err)
	}
	return deleted, nil
}

// lockTarget loads a target inside tx, row-locking it where supported.
func lockTarget(tx *gorm.DB, id uint) (*entity.Target, error) {
	var targetModel model.TargetModel
	if err := forUpdate(tx).Where("id = ?", id).First(&targetModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrTargetNotFound
		}
		return nil, err
	}
	return targetModel.ToEntity(), nil
}

// activeTargetExists reports whether another active target holds the owner's period.
func activeTargetExists(tx *gorm.DB, ownerID uuid.UUID, periodStart time.Time, excludeID uint) (bool, error) {
	var count int64
	query := tx.Model(&model.TargetModel{}).
		Where("owner_id = ? AND period_start = ? AND status = ?",
			ownerID, entity.NormalizePeriod(periodStart), string(entity.TargetStatusActive))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
