// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/domain/entity"
)

// TransferFundsRequest represents the request body for a fund transfer.
type TransferFundsRequest struct {
	FromOwnerID *string         `json:"from_owner_id,omitempty"`
	ToOwnerID   string          `json:"to_owner_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason,omitempty"`
	PeriodStart *string         `json:"period_start,omitempty"`
	SourceRef   *string         `json:"source_ref,omitempty"`
}

// ReverseTransferRequest represents the request body for reversing a transfer.
type ReverseTransferRequest struct {
	Reason string `json:"reason,omitempty"`
}

// TransferResponse represents a fund transfer in API responses.
type TransferResponse struct {
	ID             uint            `json:"id"`
	FromOwnerID    string          `json:"from_owner_id"`
	ToOwnerID      string          `json:"to_owner_id"`
	FromTargetID   uint            `json:"from_target_id"`
	ToTargetID     uint            `json:"to_target_id"`
	SourceRef      *string         `json:"source_ref,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason,omitempty"`
	Status         string          `json:"status"`
	CreatedBy      string          `json:"created_by"`
	ReversedBy     *string         `json:"reversed_by,omitempty"`
	ReversedAt     *string         `json:"reversed_at,omitempty"`
	ReversalReason string          `json:"reversal_reason,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

// TransferListResponse represents a list of transfers.
type TransferListResponse struct {
	Transfers []TransferResponse `json:"transfers"`
}

// ToTransferResponse converts a domain FundTransfer to its DTO.
func ToTransferResponse(f *entity.FundTransfer) TransferResponse {
	resp := TransferResponse{
		ID:             f.ID,
		FromOwnerID:    f.FromOwnerID.String(),
		ToOwnerID:      f.ToOwnerID.String(),
		FromTargetID:   f.FromTargetID,
		ToTargetID:     f.ToTargetID,
		SourceRef:      f.SourceRef,
		Amount:         f.Amount,
		Reason:         f.Reason,
		Status:         string(f.Status),
		CreatedBy:      f.CreatedBy.String(),
		ReversedAt:     formatOptionalTime(f.ReversedAt),
		ReversalReason: f.ReversalReason,
		CreatedAt:      f.CreatedAt.UTC().Format(time.RFC3339),
	}
	if f.ReversedBy != nil {
		s := f.ReversedBy.String()
		resp.ReversedBy = &s
	}
	return resp
}

// ToTransferListResponse converts a list of transfers to a TransferListResponse DTO.
func ToTransferListResponse(transfers []*entity.FundTransfer) TransferListResponse {
	resp := TransferListResponse{Transfers: make([]TransferResponse, len(transfers))}
	for i, f := range transfers {
		resp.Transfers[i] = ToTransferResponse(f)
	}
	return resp
}
