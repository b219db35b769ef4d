package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerror "github.com/salon-ledger/backend/internal/domain/error"
	"github.com/salon-ledger/backend/internal/integration/entrypoint/dto"
)

// handleLedgerError maps entity service errors to HTTP responses.
func handleLedgerError(ctx *gin.Context, err error) {
	var ledgerErr *domainerror.LedgerError
	if errors.As(err, &ledgerErr) {
		ctx.JSON(statusCodeForLedgerError(ledgerErr.Code), dto.ErrorResponse{
			Error: ledgerErr.Message,
			Code:  string(ledgerErr.Code),
		})
		return
	}

	if errors.Is(err, domainerror.ErrDocumentNotFound) || errors.Is(err, domainerror.ErrUpdateFailed) {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "Document not found",
			Code:  string(domainerror.ErrCodeNotFound),
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// statusCodeForLedgerError maps ledger error codes to HTTP status codes.
func statusCodeForLedgerError(code domainerror.LedgerErrorCode) int {
	switch code {
	case domainerror.ErrCodeNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeInvalidID,
		domainerror.ErrCodeNameTooLong,
		domainerror.ErrCodeInvalidColorFormat,
		domainerror.ErrCodeNegativeAmount,
		domainerror.ErrCodeInvalidYearMonth,
		domainerror.ErrCodeReasonTooLong,
		domainerror.ErrCodeIconTooLong,
		domainerror.ErrCodeMissingFields:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
