// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/domain/entity"
)

// SubmitProgressRequest represents the request body for submitting progress.
type SubmitProgressRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category,omitempty"`
	TransactionDate *string         `json:"transaction_date,omitempty"`
	SourceRef       *string         `json:"source_ref,omitempty"`
}

// DecideProgressRequest represents the request body for a decision.
type DecideProgressRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// ProgressEntryResponse represents a progress entry in API responses.
type ProgressEntryResponse struct {
	ID              uint            `json:"id"`
	TargetID        uint            `json:"target_id"`
	OwnerID         string          `json:"owner_id"`
	SourceRef       *string         `json:"source_ref,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	Status          string          `json:"status"`
	TransactionDate string          `json:"transaction_date"`
	DecidedBy       *string         `json:"decided_by,omitempty"`
	DecidedAt       *string         `json:"decided_at,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

// DecisionResponse represents the result of a decision.
type DecisionResponse struct {
	Entry          ProgressEntryResponse `json:"entry"`
	PreviousStatus string                `json:"previous_status"`
	Recomputed     bool                  `json:"recomputed"`
}

// ProgressListResponse represents a list of progress entries.
type ProgressListResponse struct {
	Entries []ProgressEntryResponse `json:"entries"`
}

// ToProgressEntryResponse converts a domain ProgressEntry to its DTO.
func ToProgressEntryResponse(e *entity.ProgressEntry) ProgressEntryResponse {
	resp := ProgressEntryResponse{
		ID:              e.ID,
		TargetID:        e.TargetID,
		OwnerID:         e.OwnerID.String(),
		SourceRef:       e.SourceRef,
		Amount:          e.Amount,
		Category:        string(e.Category),
		Status:          string(e.Status),
		TransactionDate: e.TransactionDate.Format(DateLayout),
		DecidedAt:       formatOptionalTime(e.DecidedAt),
		CreatedAt:       e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.DecidedBy != nil {
		s := e.DecidedBy.String()
		resp.DecidedBy = &s
	}
	return resp
}

// ToProgressListResponse converts a list of entries to a ProgressListResponse DTO.
func ToProgressListResponse(entries []*entity.ProgressEntry) ProgressListResponse {
	resp := ProgressListResponse{Entries: make([]ProgressEntryResponse, len(entries))}
	for i, e := range entries {
		resp.Entries[i] = ToProgressEntryResponse(e)
	}
	return resp
}
