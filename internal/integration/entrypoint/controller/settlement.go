package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/application/usecase/settlement"
	"github.com/salon-ledger/backend/internal/domain/entity"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
	"github.com/salon-ledger/backend/internal/integration/entrypoint/dto"
	"github.com/salon-ledger/backend/internal/integration/entrypoint/middleware"
)

// SettlementController handles the monthly settlement view endpoints.
type SettlementController struct {
	aggregator *settlement.Aggregator
	userRepo   adapter.UserRepository
}

// NewSettlementController creates a new settlement controller instance.
func NewSettlementController(aggregator *settlement.Aggregator, userRepo adapter.UserRepository) *SettlementController {
	return &SettlementController{
		aggregator: aggregator,
		userRepo:   userRepo,
	}
}

// Get handles GET /settlement requests. An optional ?month=yyyy-MM query
// moves the visible month.
func (c *SettlementController) Get(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}
	uid := userID.String()

	if month := ctx.Query("month"); month != "" {
		if !entity.IsValidYearMonth(month) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid month format, expected yyyy-MM",
				Code:  string(domainerror.ErrCodeInvalidYearMonth),
			})
			return
		}
		if err := c.aggregator.SetMonth(ctx.Request.Context(), uid, month); err != nil {
			handleLedgerError(ctx, err)
			return
		}
	} else if err := c.aggregator.FetchMonthlyData(ctx.Request.Context(), uid); err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SettlementResponse{
		YearMonth:          c.aggregator.YearMonth(uid),
		TotalRevenue:       c.aggregator.TotalRevenue(uid),
		TotalExpense:       c.aggregator.TotalExpense(uid),
		NetProfit:          c.aggregator.NetProfit(uid),
		RevenueByTreatment: dto.ToTreatmentRevenueResponses(c.aggregator.RevenueByTreatment(uid)),
		Expenses:           dto.ToExpenseResponses(c.aggregator.Expenses(uid)),
		Categories:         dto.ToCategoryListResponse(c.aggregator.Categories(uid)).Categories,
	})
}

// UpdateExpense handles PUT /settlement/expenses requests. Writing the same
// category again replaces its amount.
func (c *SettlementController) UpdateExpense(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var req dto.UpdateExpenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	expense, err := c.aggregator.UpdateExpense(ctx.Request.Context(), userID.String(), req.CategoryID, req.Amount)
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// DeleteExpense handles DELETE /settlement/expenses/:id requests.
func (c *SettlementController) DeleteExpense(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	if err := c.aggregator.DeleteExpense(ctx.Request.Context(), userID.String(), ctx.Param("id")); err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// CopyPreviousExpenses handles POST /settlement/expenses/copy-previous
// requests. Only categories without an amount in the visible month are
// copied.
func (c *SettlementController) CopyPreviousExpenses(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}
	uid := userID.String()

	if err := c.aggregator.CopyExpensesFromPreviousMonth(ctx.Request.Context(), uid); err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"expenses": dto.ToExpenseResponses(c.aggregator.Expenses(uid)),
	})
}

// RequestReport handles POST /settlement/report requests. The report mail is
// queued and sent by the background worker.
func (c *SettlementController) RequestReport(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	user, err := c.userRepo.FindByID(ctx.Request.Context(), userID)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not found",
			Code:  string(domainerror.ErrCodeUserNotFound),
		})
		return
	}

	job, err := c.aggregator.RequestReport(ctx.Request.Context(), user)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to queue settlement report",
		})
		return
	}

	ctx.JSON(http.StatusAccepted, dto.ToReportResponse(job))
}
