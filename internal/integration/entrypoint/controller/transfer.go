// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/target-ledger/backend/internal/application/usecase/transfer"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/integration/entrypoint/dto"
)

// TransferController handles fund transfer endpoints.
type TransferController struct {
	transferUseCase *transfer.TransferFundsUseCase
	reverseUseCase  *transfer.ReverseTransferUseCase
	listUseCase     *transfer.ListTransfersUseCase
}

// NewTransferController creates a new transfer controller instance.
func NewTransferController(
	transferUseCase *transfer.TransferFundsUseCase,
	reverseUseCase *transfer.ReverseTransferUseCase,
	listUseCase *transfer.ListTransfersUseCase,
) *TransferController {
	return &TransferController{
		transferUseCase: transferUseCase,
		reverseUseCase:  reverseUseCase,
		listUseCase:     listUseCase,
	}
}

// Create handles POST /transfers requests.
func (c *TransferController) Create(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.TransferFundsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), domainerror.ErrCodeMissingFields)
		return
	}

	toOwnerID, err := uuid.Parse(req.ToOwnerID)
	if err != nil {
		badRequest(ctx, "Invalid to_owner_id format", domainerror.ErrCodeMissingFields)
		return
	}
	periodStart, err := dto.ParseOptionalDate(req.PeriodStart)
	if err != nil {
		badRequest(ctx, "Invalid period_start format, expected YYYY-MM-DD", domainerror.ErrCodeInvalidPeriod)
		return
	}

	input := transfer.TransferFundsInput{
		Actor:       actor,
		ToOwnerID:   toOwnerID,
		Amount:      req.Amount,
		Reason:      req.Reason,
		PeriodStart: periodStart,
		SourceRef:   req.SourceRef,
	}
	if req.FromOwnerID != nil && *req.FromOwnerID != "" {
		fromOwnerID, err := uuid.Parse(*req.FromOwnerID)
		if err != nil {
			badRequest(ctx, "Invalid from_owner_id format", domainerror.ErrCodeMissingFields)
			return
		}
		input.FromOwnerID = fromOwnerID
	}

	output, err := c.transferUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToTransferResponse(output.Transfer))
}

// List handles GET /transfers requests.
func (c *TransferController) List(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	input := transfer.ListTransfersInput{Actor: actor}
	if raw := ctx.Query("owner_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			badRequest(ctx, "Invalid owner_id format", domainerror.ErrCodeMissingFields)
			return
		}
		input.OwnerID = &ownerID
	}
	if raw := ctx.Query("status"); raw != "" {
		status := entity.TransferStatus(raw)
		input.Status = &status
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTransferListResponse(output.Transfers))
}

// Reverse handles POST /transfers/:id/reverse requests.
func (c *TransferController) Reverse(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	// Body is optional
	var req dto.ReverseTransferRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, "Invalid request body: "+err.Error(), domainerror.ErrCodeMissingFields)
			return
		}
	}

	output, err := c.reverseUseCase.Execute(ctx.Request.Context(), transfer.ReverseTransferInput{
		Actor:      actor,
		TransferID: id,
		Reason:     req.Reason,
	})
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTransferResponse(output.Transfer))
}
