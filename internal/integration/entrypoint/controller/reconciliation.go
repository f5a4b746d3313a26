// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/target-ledger/backend/internal/application/usecase/aggregation"
	"github.com/target-ledger/backend/internal/application/usecase/reconciliation"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/integration/entrypoint/dto"
)

// ReconciliationController handles roll-up reads, reconciliation runs and diagnostics.
type ReconciliationController struct {
	rollupUseCase      *aggregation.GetRollupUseCase
	recalculateUseCase *reconciliation.RecalculateAllUseCase
	diagnoseUseCase    *reconciliation.DiagnoseTargetUseCase
}

// NewReconciliationController creates a new reconciliation controller instance.
func NewReconciliationController(
	rollupUseCase *aggregation.GetRollupUseCase,
	recalculateUseCase *reconciliation.RecalculateAllUseCase,
	diagnoseUseCase *reconciliation.DiagnoseTargetUseCase,
) *ReconciliationController {
	return &ReconciliationController{
		rollupUseCase:      rollupUseCase,
		recalculateUseCase: recalculateUseCase,
		diagnoseUseCase:    diagnoseUseCase,
	}
}

// Rollup handles GET /rollups/:period requests.
func (c *ReconciliationController) Rollup(ctx *gin.Context) {
	if _, ok := requireActor(ctx); !ok {
		return
	}

	periodStart, err := dto.ParseDate(ctx.Param("period"))
	if err != nil {
		badRequest(ctx, "Invalid period format, expected YYYY-MM-DD", domainerror.ErrCodeInvalidPeriod)
		return
	}

	output, err := c.rollupUseCase.Execute(ctx.Request.Context(), aggregation.GetRollupInput{
		PeriodStart: periodStart,
	})
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRollupResponse(output.Rollup))
}

// Recalculate handles POST /reconciliation/recalculate requests.
func (c *ReconciliationController) Recalculate(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	output, err := c.recalculateUseCase.Execute(ctx.Request.Context(), reconciliation.RecalculateAllInput{
		Actor: actor,
	})
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRecalculateResponse(output))
}

// Diagnostics handles GET /targets/:id/diagnostics requests.
func (c *ReconciliationController) Diagnostics(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	output, err := c.diagnoseUseCase.Execute(ctx.Request.Context(), reconciliation.DiagnoseTargetInput{
		Actor:    actor,
		TargetID: id,
	})
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToDiagnosticsResponse(output))
}
