// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/application/usecase/reconciliation"
)

// RollupResponse represents a period's roll-up in API responses.
type RollupResponse struct {
	TargetID     uint              `json:"target_id"`
	PeriodStart  string            `json:"period_start"`
	Constituents int               `json:"constituents"`
	Aggregate    AggregateResponse `json:"aggregate"`
}

// RollupRepairResponse represents a repaired roll-up.
type RollupRepairResponse struct {
	PeriodStart    string          `json:"period_start"`
	TargetID       uint            `json:"target_id"`
	PreviousAmount decimal.Decimal `json:"previous_amount"`
	NewAmount      decimal.Decimal `json:"new_amount"`
	Created        bool            `json:"created"`
}

// ReconciliationFailureResponse represents an item reconciliation could not recompute.
type ReconciliationFailureResponse struct {
	TargetID    uint    `json:"target_id,omitempty"`
	PeriodStart *string `json:"period_start,omitempty"`
	Error       string  `json:"error"`
}

// RecalculateResponse represents the report of a reconciliation run.
type RecalculateResponse struct {
	TargetsRecomputed int                             `json:"targets_recomputed"`
	PeriodsRecomputed int                             `json:"periods_recomputed"`
	Repairs           []RollupRepairResponse          `json:"repairs"`
	Failures          []ReconciliationFailureResponse `json:"failures,omitempty"`
	StartedAt         string                          `json:"started_at"`
	FinishedAt        string                          `json:"finished_at"`
}

// FormulaResponse represents the alternative progress sums of a target.
type FormulaResponse struct {
	StoreAggregate   AggregateResponse `json:"store_aggregate"`
	InMemoryApproved decimal.Decimal   `json:"in_memory_approved"`
	InMemoryNet      decimal.Decimal   `json:"in_memory_net"`
	AllStatuses      decimal.Decimal   `json:"all_statuses"`
	Pending          decimal.Decimal   `json:"pending"`
	Rejected         decimal.Decimal   `json:"rejected"`
}

// RollupComparisonResponse compares the cached and fresh roll-up amounts.
type RollupComparisonResponse struct {
	Found  bool            `json:"found"`
	Cached decimal.Decimal `json:"cached"`
	Fresh  decimal.Decimal `json:"fresh"`
}

// DiagnosticsResponse represents the diagnostic report of a target.
type DiagnosticsResponse struct {
	Target       TargetResponse           `json:"target"`
	Entries      []ProgressEntryResponse  `json:"entries"`
	TransfersIn  []TransferResponse       `json:"transfers_in"`
	TransfersOut []TransferResponse       `json:"transfers_out"`
	Formulas     FormulaResponse          `json:"formulas"`
	Rollup       RollupComparisonResponse `json:"rollup"`
	Drift        bool                     `json:"drift"`
}

// ToRollupResponse converts a roll-up result to its DTO.
func ToRollupResponse(r *aggregation.RollupResult) RollupResponse {
	return RollupResponse{
		TargetID:     r.Aggregate.TargetID,
		PeriodStart:  r.PeriodStart.Format(DateLayout),
		Constituents: r.Constituents,
		Aggregate:    ToAggregateResponse(r.Aggregate),
	}
}

// ToRecalculateResponse converts a reconciliation report to its DTO.
func ToRecalculateResponse(out *reconciliation.RecalculateAllOutput) RecalculateResponse {
	resp := RecalculateResponse{
		TargetsRecomputed: out.TargetsRecomputed,
		PeriodsRecomputed: out.PeriodsRecomputed,
		Repairs:           make([]RollupRepairResponse, len(out.Repairs)),
		StartedAt:         out.StartedAt.Format(time.RFC3339),
		FinishedAt:        out.FinishedAt.Format(time.RFC3339),
	}
	for i, r := range out.Repairs {
		resp.Repairs[i] = RollupRepairResponse{
			PeriodStart:    r.PeriodStart.Format(DateLayout),
			TargetID:       r.TargetID,
			PreviousAmount: r.PreviousAmount,
			NewAmount:      r.NewAmount,
			Created:        r.Created,
		}
	}
	for _, f := range out.Failures {
		resp.Failures = append(resp.Failures, ReconciliationFailureResponse{
			TargetID:    f.TargetID,
			PeriodStart: formatOptionalDate(f.PeriodStart),
			Error:       f.Error,
		})
	}
	return resp
}

// ToDiagnosticsResponse converts a diagnostic report to its DTO.
func ToDiagnosticsResponse(out *reconciliation.DiagnoseTargetOutput) DiagnosticsResponse {
	resp := DiagnosticsResponse{
		Target:       ToTargetResponse(out.Target),
		Entries:      ToProgressListResponse(out.Entries).Entries,
		TransfersIn:  ToTransferListResponse(out.TransfersIn).Transfers,
		TransfersOut: ToTransferListResponse(out.TransfersOut).Transfers,
		Formulas: FormulaResponse{
			StoreAggregate:   ToAggregateResponse(out.Formulas.StoreAggregate),
			InMemoryApproved: out.Formulas.InMemoryApproved,
			InMemoryNet:      out.Formulas.InMemoryNet,
			AllStatuses:      out.Formulas.AllStatuses,
			Pending:          out.Formulas.Pending,
			Rejected:         out.Formulas.Rejected,
		},
		Rollup: RollupComparisonResponse{
			Found:  out.Rollup.Found,
			Cached: out.Rollup.Cached,
			Fresh:  out.Rollup.Fresh,
		},
		Drift: out.Drift,
	}
	return resp
}
