package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salon-ledger/backend/internal/application/service"
	"github.com/salon-ledger/backend/internal/application/usecase/calendar"
	"github.com/salon-ledger/backend/internal/domain/entity"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
	"github.com/salon-ledger/backend/internal/integration/entrypoint/dto"
	"github.com/salon-ledger/backend/internal/integration/entrypoint/middleware"
)

// CalendarController handles the calendar view and its record and adjustment
// mutations.
type CalendarController struct {
	aggregator  *calendar.Aggregator
	records     *service.RecordService
	adjustments *service.AdjustmentService
	treatments  *service.TreatmentService
}

// NewCalendarController creates a new calendar controller instance.
func NewCalendarController(
	aggregator *calendar.Aggregator,
	records *service.RecordService,
	adjustments *service.AdjustmentService,
	treatments *service.TreatmentService,
) *CalendarController {
	return &CalendarController{
		aggregator:  aggregator,
		records:     records,
		adjustments: adjustments,
		treatments:  treatments,
	}
}

// GetMonth handles GET /calendar/month requests. An optional ?month=yyyy-MM
// query moves the visible month; without it the current visible month is
// reloaded.
func (c *CalendarController) GetMonth(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}
	uid := userID.String()

	if month := ctx.Query("month"); month != "" {
		if err := c.aggregator.SetMonth(ctx.Request.Context(), uid, month); err != nil {
			if !entity.IsValidYearMonth(month) {
				ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
					Error: "Invalid month format, expected yyyy-MM",
					Code:  string(domainerror.ErrCodeInvalidYearMonth),
				})
				return
			}
			handleLedgerError(ctx, err)
			return
		}
	} else if err := c.aggregator.FetchMonthlyData(ctx.Request.Context(), uid); err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, c.buildMonthResponse(uid))
}

// GetDay handles GET /calendar/day requests. The ?date=yyyy-MM-dd query
// selects the day and loads its detail.
func (c *CalendarController) GetDay(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}
	uid := userID.String()

	date, err := dto.ParseDate(ctx.Query("date"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid date format, expected yyyy-MM-dd",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	if err := c.aggregator.SelectDate(ctx.Request.Context(), uid, date); err != nil {
		handleLedgerError(ctx, err)
		return
	}

	records := c.records.Snapshot(uid)
	adjustments := c.adjustments.Snapshot(uid)
	recordDTOs := make([]dto.RecordResponse, len(records))
	for i := range records {
		recordDTOs[i] = dto.ToRecordResponse(&records[i])
	}
	adjustmentDTOs := make([]dto.AdjustmentResponse, len(adjustments))
	for i := range adjustments {
		adjustmentDTOs[i] = dto.ToAdjustmentResponse(&adjustments[i])
	}

	ctx.JSON(http.StatusOK, dto.CalendarDayDetailResponse{
		Date:        dto.FormatDate(date),
		Records:     recordDTOs,
		Adjustments: adjustmentDTOs,
		DailyTotal:  c.records.DailyTotal(uid) + c.adjustments.AdjustmentTotal(uid),
	})
}

// CreateRecord handles POST /calendar/records requests. Recording the same
// treatment on the same day again accumulates onto the existing record.
func (c *CalendarController) CreateRecord(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}
	uid := userID.String()

	var req dto.CreateRecordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	date, err := dto.ParseDate(req.Date)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid date format, expected yyyy-MM-dd",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	treatment, found := c.findTreatment(ctx, uid, req.TreatmentID)
	if !found {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "Treatment not found",
			Code:  string(domainerror.ErrCodeNotFound),
		})
		return
	}

	record, err := c.records.AddOrUpdate(ctx.Request.Context(), uid, date, treatment)
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToRecordResponse(record))
}

// UpdateRecordCount handles PATCH /calendar/records/:id/count requests.
// A count of zero or below removes the record.
func (c *CalendarController) UpdateRecordCount(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var req dto.UpdateRecordCountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Count == nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	if err := c.records.UpdateCount(ctx.Request.Context(), userID.String(), ctx.Param("id"), *req.Count); err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// DeleteRecord handles DELETE /calendar/records/:id requests.
func (c *CalendarController) DeleteRecord(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	if err := c.records.Delete(ctx.Request.Context(), userID.String(), ctx.Param("id")); err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// CreateAdjustment handles POST /calendar/adjustments requests.
func (c *CalendarController) CreateAdjustment(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var req dto.CreateAdjustmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	date, err := dto.ParseDate(req.Date)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid date format, expected yyyy-MM-dd",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	adjustment, err := c.adjustments.Add(ctx.Request.Context(), userID.String(), date, req.Amount, req.Reason)
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToAdjustmentResponse(adjustment))
}

// UpdateAdjustment handles PATCH /calendar/adjustments/:id requests.
func (c *CalendarController) UpdateAdjustment(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var req dto.UpdateAdjustmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	if err := c.adjustments.Update(ctx.Request.Context(), userID.String(), ctx.Param("id"), req.Amount, req.Reason); err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// DeleteAdjustment handles DELETE /calendar/adjustments/:id requests.
func (c *CalendarController) DeleteAdjustment(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	if err := c.adjustments.Delete(ctx.Request.Context(), userID.String(), ctx.Param("id")); err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// buildMonthResponse renders the visible month with one cell per day that
// holds activity.
func (c *CalendarController) buildMonthResponse(userID string) dto.CalendarMonthResponse {
	year, month := c.aggregator.VisibleMonth(userID)
	first, last := entity.MonthRange(year, month)

	days := make([]dto.CalendarDayResponse, 0)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		hasRecords := c.aggregator.HasRecords(userID, day)
		total := c.aggregator.DailyTotal(userID, day)
		if !hasRecords && total == 0 {
			continue
		}
		days = append(days, dto.CalendarDayResponse{
			Date:            dto.FormatDate(day),
			HasRecords:      hasRecords,
			TreatmentColors: c.aggregator.TreatmentColors(userID, day),
			DailyTotal:      total,
		})
	}

	return dto.CalendarMonthResponse{
		Year:           year,
		Month:          int(month),
		MonthlyRevenue: c.aggregator.MonthlyRevenue(userID),
		Days:           days,
	}
}

// findTreatment resolves a treatment from the mirror, refreshing it once when
// the id is not mirrored yet.
func (c *CalendarController) findTreatment(ctx *gin.Context, userID, treatmentID string) (entity.Treatment, bool) {
	for _, t := range c.treatments.Snapshot(userID) {
		if t.ID == treatmentID {
			return t, true
		}
	}
	refreshed, err := c.treatments.FetchAll(ctx.Request.Context(), userID)
	if err != nil {
		return entity.Treatment{}, false
	}
	for _, t := range refreshed {
		if t.ID == treatmentID {
			return t, true
		}
	}
	return entity.Treatment{}, false
}
