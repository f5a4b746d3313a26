// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/integration/persistence/model"
)

// transferRepository implements the adapter.TransferRepository interface.
type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a new fund transfer repository instance.
func NewTransferRepository(db *gorm.DB) adapter.TransferRepository {
	return &transferRepository{
		db: db,
	}
}

// CreateChecked reads the sender's balance and inserts the transfer in one
// transaction. The sender's target row is locked on Postgres so concurrent
// transfers from the same target cannot both pass the check.
func (r *transferRepository) CreateChecked(ctx context.Context, transfer *entity.FundTransfer) error {
	transferModel := model.FundTransferFromEntity(transfer)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sender, err := lockTarget(tx, transfer.FromTargetID)
		if err != nil {
			if errors.Is(err, domainerror.ErrTargetNotFound) {
				return domainerror.ErrNoActiveTarget
			}
			return err
		}
		if !sender.IsActive() {
			return domainerror.ErrNoActiveTarget
		}

		totals, err := targetTotals(tx, sender.ID)
		if err != nil {
			return err
		}

		available := totals.Available()
		if transfer.Amount.GreaterThan(available) {
			return &adapter.InsufficientFundsDetail{
				Requested: transfer.Amount,
				Available: available,
			}
		}

		return tx.Create(transferModel).Error
	})
	if err != nil {
		return storeError("create transfer", err)
	}

	transfer.ID = transferModel.ID
	return nil
}

// FindByID retrieves a transfer by its ID.
func (r *transferRepository) FindByID(ctx context.Context, id uint) (*entity.FundTransfer, error) {
	var transferModel model.FundTransferModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&transferModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrTransferNotFound
		}
		return nil, storeError("find transfer", result.Error)
	}
	return transferModel.ToEntity(), nil
}

// List retrieves transfers matching the filter, newest first.
func (r *transferRepository) List(ctx context.Context, filter adapter.TransferFilter) ([]*entity.FundTransfer, error) {
	query := r.db.WithContext(ctx).Model(&model.FundTransferModel{})
	if filter.OwnerID != nil {
		query = query.Where("from_owner_id = ? OR to_owner_id = ?", *filter.OwnerID, *filter.OwnerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	return findTransfers(query.Order("created_at DESC").Order("id DESC"))
}

// ListByTarget retrieves the transfers sent from or received by a target.
func (r *transferRepository) ListByTarget(ctx context.Context, targetID uint) ([]*entity.FundTransfer, error) {
	query := r.db.WithContext(ctx).
		Where("from_target_id = ? OR to_target_id = ?", targetID, targetID).
		Order("id ASC")

	return findTransfers(query)
}

// Reverse marks an active transfer reversed.
func (r *transferRepository) Reverse(ctx context.Context, id uint, reversedBy uuid.UUID, reason string) (*entity.FundTransfer, error) {
	var reversed *entity.FundTransfer

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var transferModel model.FundTransferModel
		if err := forUpdate(tx).Where("id = ?", id).First(&transferModel).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerror.ErrTransferNotFound
			}
			return err
		}

		transfer := transferModel.ToEntity()
		if !transfer.IsActive() {
			return domainerror.ErrNotReversible
		}
		transfer.Reverse(reversedBy, reason)

		if err := tx.Model(&model.FundTransferModel{}).
			Where("id = ? AND status = ?", id, string(entity.TransferStatusActive)).
			Updates(map[string]any{
				"status":          string(transfer.Status),
				"reversed_by":     reversedBy,
				"reversed_at":     *transfer.ReversedAt,
				"reversal_reason": reason,
				"updated_at":      transfer.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		reversed = transfer
		return nil
	})
	if err != nil {
		return nil, storeError("reverse transfer", err)
	}
	return reversed, nil
}

func findTransfers(query *gorm.DB) ([]*entity.FundTransfer, error) {
	var transferModels []model.FundTransferModel
	if err := query.Find(&transferModels).Error; err != nil {
		return nil, storeError("list transfers", err)
	}

	transfers := make([]*entity.FundTransfer, len(transferModels))
	for i := range transferModels {
		transfers[i] = transferModels[i].ToEntity()
	}
	return transfers, nil
}
