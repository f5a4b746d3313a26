// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/target-ledger/backend/internal/application/usecase/target"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/integration/entrypoint/dto"
)

// TargetController handles target lifecycle endpoints.
type TargetController struct {
	createUseCase *target.CreateTargetUseCase
	extendUseCase *target.ExtendTargetUseCase
	updateUseCase *target.UpdateTargetUseCase
	deleteUseCase *target.DeleteTargetUseCase
	getUseCase    *target.GetTargetUseCase
	listUseCase   *target.ListTargetsUseCase
}

// NewTargetController creates a new target controller instance.
func NewTargetController(
	createUseCase *target.CreateTargetUseCase,
	extendUseCase *target.ExtendTargetUseCase,
	updateUseCase *target.UpdateTargetUseCase,
	deleteUseCase *target.DeleteTargetUseCase,
	getUseCase *target.GetTargetUseCase,
	listUseCase *target.ListTargetsUseCase,
) *TargetController {
	return &TargetController{
		createUseCase: createUseCase,
		extendUseCase: extendUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
		getUseCase:    getUseCase,
		listUseCase:   listUseCase,
	}
}

// Create handles POST /targets requests.
func (c *TargetController) Create(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateTargetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), domainerror.ErrCodeMissingFields)
		return
	}

	periodStart, err := dto.ParseDate(req.PeriodStart)
	if err != nil {
		badRequest(ctx, "Invalid period_start format, expected YYYY-MM-DD", domainerror.ErrCodeInvalidPeriod)
		return
	}
	periodEnd, err := dto.ParseOptionalDate(req.PeriodEnd)
	if err != nil {
		badRequest(ctx, "Invalid period_end format, expected YYYY-MM-DD", domainerror.ErrCodeInvalidPeriod)
		return
	}

	input := target.CreateTargetInput{
		Actor:       actor,
		Amount:      req.TargetAmount,
		Category:    entity.TargetCategory(req.Category),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Notes:       req.Notes,
	}
	if req.OwnerID != nil && *req.OwnerID != "" {
		ownerID, err := uuid.Parse(*req.OwnerID)
		if err != nil {
			badRequest(ctx, "Invalid owner_id format", domainerror.ErrCodeMissingFields)
			return
		}
		input.OwnerID = ownerID
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToTargetWithAggregateResponse(output.Target, output.Aggregate))
}

// List handles GET /targets requests.
func (c *TargetController) List(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	input := target.ListTargetsInput{Actor: actor}

	if raw := ctx.Query("owner_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			badRequest(ctx, "Invalid owner_id format", domainerror.ErrCodeMissingFields)
			return
		}
		input.OwnerID = &ownerID
	}
	if raw := ctx.Query("period_start"); raw != "" {
		periodStart, err := dto.ParseDate(raw)
		if err != nil {
			badRequest(ctx, "Invalid period_start format, expected YYYY-MM-DD", domainerror.ErrCodeInvalidPeriod)
			return
		}
		input.PeriodStart = &periodStart
	}
	if raw := ctx.Query("status"); raw != "" {
		status := entity.TargetStatus(raw)
		input.Status = &status
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTargetListResponse(output.Targets))
}

// Get handles GET /targets/:id requests.
func (c *TargetController) Get(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	output, err := c.getUseCase.Execute(ctx.Request.Context(), target.GetTargetInput{
		Actor:    actor,
		TargetID: id,
	})
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTargetWithAggregateResponse(output.Target, output.Aggregate))
}

// Update handles PATCH /targets/:id requests.
func (c *TargetController) Update(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateTargetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), domainerror.ErrCodeMissingFields)
		return
	}

	periodEnd, err := dto.ParseOptionalDate(req.PeriodEnd)
	if err != nil {
		badRequest(ctx, "Invalid period_end format, expected YYYY-MM-DD", domainerror.ErrCodeInvalidPeriod)
		return
	}

	input := target.UpdateTargetInput{
		Actor:     actor,
		TargetID:  id,
		Amount:    req.TargetAmount,
		PeriodEnd: periodEnd,
		Notes:     req.Notes,
	}
	if req.Category != nil {
		category := entity.TargetCategory(*req.Category)
		input.Category = &category
	}
	if req.Status != nil {
		status := entity.TargetStatus(*req.Status)
		input.Status = &status
	}

	output, err := c.updateUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTargetResponse(output.Target))
}

// Extend handles POST /targets/:id/extend requests.
func (c *TargetController) Extend(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ExtendTargetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), domainerror.ErrCodeMissingFields)
		return
	}

	periodEnd, err := dto.ParseOptionalDate(req.PeriodEnd)
	if err != nil {
		badRequest(ctx, "Invalid period_end format, expected YYYY-MM-DD", domainerror.ErrCodeInvalidPeriod)
		return
	}

	output, err := c.extendUseCase.Execute(ctx.Request.Context(), target.ExtendTargetInput{
		Actor:            actor,
		TargetID:         id,
		AdditionalAmount: req.AdditionalAmount,
		PeriodEnd:        periodEnd,
	})
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ExtendTargetResponse{
		PreviousTargetID: output.Previous.ID,
		Target:           dto.ToTargetResponse(output.Target),
	})
}

// Delete handles DELETE /targets/:id requests.
func (c *TargetController) Delete(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.deleteUseCase.Execute(ctx.Request.Context(), target.DeleteTargetInput{
		Actor:    actor,
		TargetID: id,
	}); err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
