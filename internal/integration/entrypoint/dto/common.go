// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/domain/valueobject"
)

// DateLayout is the wire format of period boundaries and transaction dates.
const DateLayout = "2006-01-02"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AggregateResponse represents the derived values of a target.
type AggregateResponse struct {
	TargetAmount       decimal.Decimal `json:"target_amount"`
	TotalProgress      decimal.Decimal `json:"total_progress"`
	SharedIn           decimal.Decimal `json:"shared_in"`
	SharedOut          decimal.Decimal `json:"shared_out"`
	NetAmount          decimal.Decimal `json:"net_amount"`
	ProgressPercentage decimal.Decimal `json:"progress_percentage"`
	RemainingAmount    decimal.Decimal `json:"remaining_amount"`
}

// ToAggregateResponse converts an aggregate value object to its DTO.
func ToAggregateResponse(a valueobject.Aggregate) AggregateResponse {
	return AggregateResponse{
		TargetAmount:       a.TargetAmount,
		TotalProgress:      a.TotalProgress,
		SharedIn:           a.SharedIn,
		SharedOut:          a.SharedOut,
		NetAmount:          a.NetAmount,
		ProgressPercentage: a.ProgressPercentage,
		RemainingAmount:    a.RemainingAmount,
	}
}

// ParseDate parses a DateLayout string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// ParseOptionalDate parses a DateLayout string pointer. Nil or empty yields nil.
func ParseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := ParseDate(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
