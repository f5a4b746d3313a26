// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/target-ledger/backend/internal/application/usecase/progress"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/integration/entrypoint/dto"
)

// ProgressController handles progress workflow endpoints.
type ProgressController struct {
	submitUseCase *progress.SubmitProgressUseCase
	decideUseCase *progress.DecideProgressUseCase
	listUseCase   *progress.ListProgressUseCase
}

// NewProgressController creates a new progress controller instance.
func NewProgressController(
	submitUseCase *progress.SubmitProgressUseCase,
	decideUseCase *progress.DecideProgressUseCase,
	listUseCase *progress.ListProgressUseCase,
) *ProgressController {
	return &ProgressController{
		submitUseCase: submitUseCase,
		decideUseCase: decideUseCase,
		listUseCase:   listUseCase,
	}
}

// Submit handles POST /targets/:id/progress requests.
func (c *ProgressController) Submit(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SubmitProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), domainerror.ErrCodeMissingFields)
		return
	}

	transactionDate, err := dto.ParseOptionalDate(req.TransactionDate)
	if err != nil {
		badRequest(ctx, "Invalid transaction_date format, expected YYYY-MM-DD", domainerror.ErrCodeInvalidPeriod)
		return
	}

	input := progress.SubmitProgressInput{
		Actor:     actor,
		TargetID:  targetID,
		Amount:    req.Amount,
		Category:  entity.TargetCategory(req.Category),
		SourceRef: req.SourceRef,
	}
	if transactionDate != nil {
		input.TransactionDate = *transactionDate
	}

	output, err := c.submitUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToProgressEntryResponse(output.Entry))
}

// List handles GET /targets/:id/progress requests.
func (c *ProgressController) List(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	input := progress.ListProgressInput{Actor: actor, TargetID: targetID}
	if raw := ctx.Query("status"); raw != "" {
		status := entity.ProgressStatus(raw)
		input.Status = &status
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToProgressListResponse(output.Entries))
}

// Decide handles POST /progress/:id/decision requests.
func (c *ProgressController) Decide(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	entryID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.DecideProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), domainerror.ErrCodeMissingFields)
		return
	}

	output, err := c.decideUseCase.Execute(ctx.Request.Context(), progress.DecideProgressInput{
		Actor:    actor,
		EntryID:  entryID,
		Decision: entity.ProgressStatus(req.Decision),
	})
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.DecisionResponse{
		Entry:          dto.ToProgressEntryResponse(output.Entry),
		PreviousStatus: string(output.PreviousStatus),
		Recomputed:     output.Recomputed,
	})
}
