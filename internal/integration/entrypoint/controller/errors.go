// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/integration/entrypoint/dto"
	"github.com/target-ledger/backend/internal/integration/entrypoint/middleware"
)

// handleLedgerError maps ledger errors to HTTP responses.
func handleLedgerError(ctx *gin.Context, err error) {
	var ledgerErr *domainerror.LedgerError
	if errors.As(err, &ledgerErr) {
		resp := dto.ErrorResponse{
			Error: ledgerErr.Message,
			Code:  string(ledgerErr.Code),
		}

		var funds *adapter.InsufficientFundsDetail
		if errors.As(err, &funds) {
			resp.Details = funds.Error()
		}

		if ledgerErr.Retryable() {
			ctx.Header("Retry-After", "1")
		}
		ctx.JSON(statusCodeForCategory(ledgerErr.Code.Category()), resp)
		return
	}

	slog.ErrorContext(ctx.Request.Context(), "Unhandled ledger error",
		"path", ctx.FullPath(),
		"error", err,
	)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// statusCodeForCategory maps error categories to HTTP status codes.
func statusCodeForCategory(category domainerror.ErrorCategory) int {
	switch category {
	case domainerror.CategoryValidation:
		return http.StatusBadRequest
	case domainerror.CategoryForbidden:
		return http.StatusForbidden
	case domainerror.CategoryNotFound:
		return http.StatusNotFound
	case domainerror.CategoryConflict:
		return http.StatusConflict
	case domainerror.CategoryTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// requireActor returns the authenticated actor or writes a 401.
func requireActor(ctx *gin.Context) (entity.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return entity.Actor{}, false
	}
	return actor, true
}

// parseIDParam parses a positive numeric path parameter or writes a 400.
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(ctx, "Invalid "+name+" format", domainerror.ErrCodeMissingFields)
		return 0, false
	}
	return uint(id), true
}

func badRequest(ctx *gin.Context, message string, code domainerror.LedgerErrorCode) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: message,
		Code:  string(code),
	})
}
