package dto

import (
	"time"

	"github.com/salon-ledger/backend/internal/domain/entity"
)

// dateFormat is the wire format for calendar dates.
const dateFormat = "2006-01-02"

// CreateRecordRequest represents the request body for recording a treatment.
type CreateRecordRequest struct {
	Date        string `json:"date" binding:"required"`
	TreatmentID string `json:"treatment_id" binding:"required"`
}

// UpdateRecordCountRequest represents the request body for changing a
// record's count. A count of zero removes the record.
type UpdateRecordCountRequest struct {
	Count *int `json:"count" binding:"required"`
}

// CreateAdjustmentRequest represents the request body for adding a revenue
// adjustment. Negative amounts are discounts.
type CreateAdjustmentRequest struct {
	Date   string `json:"date" binding:"required"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// UpdateAdjustmentRequest represents the request body for adjustment updates.
type UpdateAdjustmentRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// RecordResponse represents a daily record in API responses.
type RecordResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	TreatmentID string `json:"treatment_id"`
	Count       int    `json:"count"`
	TotalAmount int64  `json:"total_amount"`
}

// AdjustmentResponse represents a daily adjustment in API responses.
type AdjustmentResponse struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason,omitempty"`
}

// CalendarDayResponse is one day cell of the month view.
type CalendarDayResponse struct {
	Date            string   `json:"date"`
	HasRecords      bool     `json:"has_records"`
	TreatmentColors []string `json:"treatment_colors,omitempty"`
	DailyTotal      int64    `json:"daily_total"`
}

// CalendarMonthResponse represents the month view response.
type CalendarMonthResponse struct {
	Year           int                   `json:"year"`
	Month          int                   `json:"month"`
	MonthlyRevenue int64                 `json:"monthly_revenue"`
	Days           []CalendarDayResponse `json:"days"`
}

// CalendarDayDetailResponse represents the selected day detail response.
type CalendarDayDetailResponse struct {
	Date        string               `json:"date"`
	Records     []RecordResponse     `json:"records"`
	Adjustments []AdjustmentResponse `json:"adjustments"`
	DailyTotal  int64                `json:"daily_total"`
}

// FormatDate renders a time as the wire date format.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateFormat)
}

// ParseDate parses a wire format date into a UTC day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateFormat, s, time.UTC)
}

// ToRecordResponse converts a DailyRecord entity to its response DTO.
func ToRecordResponse(r *entity.DailyRecord) RecordResponse {
	return RecordResponse{
		ID:          r.ID,
		Date:        FormatDate(r.Date),
		TreatmentID: r.TreatmentID,
		Count:       r.Count,
		TotalAmount: r.TotalAmount,
	}
}

// ToAdjustmentResponse converts a DailyAdjustment entity to its response DTO.
func ToAdjustmentResponse(a *entity.DailyAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:     a.ID,
		Date:   FormatDate(a.Date),
		Amount: a.Amount,
		Reason: a.Reason,
	}
}
