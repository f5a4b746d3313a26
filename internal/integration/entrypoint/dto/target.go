// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/domain/entity"
	"github.com/target-ledger/backend/internal/domain/valueobject"
)

// CreateTargetRequest represents the request body for creating a target.
type CreateTargetRequest struct {
	OwnerID      *string         `json:"owner_id,omitempty"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	Category     string          `json:"category" binding:"required"`
	PeriodStart  string          `json:"period_start" binding:"required"`
	PeriodEnd    *string         `json:"period_end,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// ExtendTargetRequest represents the request body for extending a target.
type ExtendTargetRequest struct {
	AdditionalAmount decimal.Decimal `json:"additional_amount"`
	PeriodEnd        *string         `json:"period_end,omitempty"`
}

// UpdateTargetRequest represents the request body for updating a target.
type UpdateTargetRequest struct {
	TargetAmount *decimal.Decimal `json:"target_amount,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Status       *string          `json:"status,omitempty"`
	PeriodEnd    *string          `json:"period_end,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

// TargetResponse represents a target in API responses.
type TargetResponse struct {
	ID           uint               `json:"id"`
	OwnerID      string             `json:"owner_id"`
	PeriodStart  string             `json:"period_start"`
	PeriodEnd    *string            `json:"period_end,omitempty"`
	TargetAmount decimal.Decimal    `json:"target_amount"`
	Category     string             `json:"category"`
	Status       string             `json:"status"`
	Notes        string             `json:"notes,omitempty"`
	CreatedBy    string             `json:"created_by"`
	CreatedAt    string             `json:"created_at"`
	UpdatedAt    string             `json:"updated_at"`
	Aggregate    *AggregateResponse `json:"aggregate,omitempty"`
}

// ExtendTargetResponse represents the result of an extension.
type ExtendTargetResponse struct {
	PreviousTargetID uint           `json:"previous_target_id"`
	Target           TargetResponse `json:"target"`
}

// TargetListResponse represents a list of targets.
type TargetListResponse struct {
	Targets []TargetResponse `json:"targets"`
}

// ToTargetResponse converts a domain Target entity to a TargetResponse DTO.
func ToTargetResponse(t *entity.Target) TargetResponse {
	return TargetResponse{
		ID:           t.ID,
		OwnerID:      t.OwnerID.String(),
		PeriodStart:  t.PeriodStart.Format(DateLayout),
		PeriodEnd:    formatOptionalDate(t.PeriodEnd),
		TargetAmount: t.TargetAmount,
		Category:     string(t.Category),
		Status:       string(t.Status),
		Notes:        t.Notes,
		CreatedBy:    t.CreatedBy.String(),
		CreatedAt:    t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ToTargetWithAggregateResponse converts a target and its aggregate to a DTO.
func ToTargetWithAggregateResponse(t *entity.Target, a valueobject.Aggregate) TargetResponse {
	resp := ToTargetResponse(t)
	agg := ToAggregateResponse(a)
	resp.Aggregate = &agg
	return resp
}

// ToTargetListResponse converts a list of targets to a TargetListResponse DTO.
func ToTargetListResponse(targets []*entity.Target) TargetListResponse {
	resp := TargetListResponse{Targets: make([]TargetResponse, len(targets))}
	for i, t := range targets {
		resp.Targets[i] = ToTargetResponse(t)
	}
	return resp
}
