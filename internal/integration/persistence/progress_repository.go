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

// progressRepository implements the adapter.ProgressRepository interface.
type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository creates a new progress entry repository instance.
func NewProgressRepository(db *gorm.DB) adapter.ProgressRepository {
	return &progressRepository{
		db: db,
	}
}

// Create inserts a progress entry.
func (r *progressRepository) Create(ctx context.Context, entry *entity.ProgressEntry) error {
	entryModel := model.ProgressEntryFromEntity(entry)
	if err := r.db.WithContext(ctx).Omit("Target").Create(entryModel).Error; err != nil {
		return storeError("create progress entry", err)
	}
	entry.ID = entryModel.ID
	return nil
}

// FindByID retrieves a progress entry by its ID.
func (r *progressRepository) FindByID(ctx context.Context, id uint) (*entity.ProgressEntry, error) {
	var entryModel model.ProgressEntryModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&entryModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrProgressNotFound
		}
		return nil, storeError("find progress entry", result.Error)
	}
	return entryModel.ToEntity(), nil
}

// ListByTarget retrieves a target's entries in insertion order.
func (r *progressRepository) ListByTarget(ctx context.Context, targetID uint, status *entity.ProgressStatus) ([]*entity.ProgressEntry, error) {
	query := r.db.WithContext(ctx).Where("target_id = ?", targetID)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var entryModels []model.ProgressEntryModel
	if err := query.Order("id ASC").Find(&entryModels).Error; err != nil {
		return nil, storeError("list progress entries", err)
	}

	entries := make([]*entity.ProgressEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToEntity()
	}
	return entries, nil
}

// Decide applies an authorizer decision and reports the previous status.
func (r *progressRepository) Decide(ctx context.Context, id uint, decision entity.ProgressStatus, decidedBy uuid.UUID) (*adapter.DecisionResult, error) {
	var result *adapter.DecisionResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entryModel model.ProgressEntryModel
		if err := forUpdate(tx).Where("id = ?", id).First(&entryModel).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerror.ErrProgressNotFound
			}
			return err
		}

		entry := entryModel.ToEntity()
		previous := entry.Status
		if previous == decision {
			return domainerror.ErrAlreadyInState
		}

		now := time.Now().UTC()
		if err := tx.Model(&model.ProgressEntryModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"status":     string(decision),
				"decided_by": decidedBy,
				"decided_at": now,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		entry.Status = decision
		entry.DecidedBy = &decidedBy
		entry.DecidedAt = &now
		entry.UpdatedAt = now
		result = &adapter.DecisionResult{Entry: entry, PreviousStatus: previous}
		return nil
	})
	if err != nil {
		return nil, storeError("decide progress entry", err)
	}
	return result, nil
}
