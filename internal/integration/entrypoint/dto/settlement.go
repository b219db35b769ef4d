package dto

import (
	"github.com/salon-ledger/backend/internal/application/usecase/settlement"
	"github.com/salon-ledger/backend/internal/domain/entity"
)

// UpdateExpenseRequest represents the request body for upserting one
// category's expense amount in the visible month.
type UpdateExpenseRequest struct {
	CategoryID string `json:"category_id" binding:"required"`
	Amount     int64  `json:"amount"`
}

// ExpenseResponse represents a monthly expense in API responses.
type ExpenseResponse struct {
	ID         string `json:"id"`
	YearMonth  string `json:"year_month"`
	CategoryID string `json:"category_id"`
	Amount     int64  `json:"amount"`
}

// TreatmentRevenueResponse is one row of the revenue breakdown.
type TreatmentRevenueResponse struct {
	TreatmentID string `json:"treatment_id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Amount      int64  `json:"amount"`
	Share       string `json:"share"`
}

// SettlementResponse represents the monthly settlement view response.
type SettlementResponse struct {
	YearMonth          string                     `json:"year_month"`
	TotalRevenue       int64                      `json:"total_revenue"`
	TotalExpense       int64                      `json:"total_expense"`
	NetProfit          int64                      `json:"net_profit"`
	RevenueByTreatment []TreatmentRevenueResponse `json:"revenue_by_treatment"`
	Expenses           []ExpenseResponse          `json:"expenses"`
	Categories         []CategoryResponse         `json:"categories"`
}

// ReportResponse represents the queued settlement report response.
type ReportResponse struct {
	JobID     string `json:"job_id"`
	YearMonth string `json:"year_month"`
	Status    string `json:"status"`
}

// ToExpenseResponse converts a MonthlyExpense entity to its response DTO.
func ToExpenseResponse(e *entity.MonthlyExpense) ExpenseResponse {
	return ExpenseResponse{
		ID:         e.ID,
		YearMonth:  e.YearMonth,
		CategoryID: e.CategoryID,
		Amount:     e.Amount,
	}
}

// ToTreatmentRevenueResponses converts the revenue breakdown rows.
func ToTreatmentRevenueResponses(rows []settlement.TreatmentRevenue) []TreatmentRevenueResponse {
	out := make([]TreatmentRevenueResponse, len(rows))
	for i, row := range rows {
		out[i] = TreatmentRevenueResponse{
			TreatmentID: row.TreatmentID,
			Name:        row.Name,
			Color:       row.Color,
			Amount:      row.Amount,
			Share:       row.Share.String(),
		}
	}
	return out
}

// ToExpenseResponses converts a slice of monthly expenses.
func ToExpenseResponses(expenses []entity.MonthlyExpense) []ExpenseResponse {
	out := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		out[i] = ToExpenseResponse(&expenses[i])
	}
	return out
}

// ToReportResponse converts a ReportJob entity to its response DTO.
func ToReportResponse(job *entity.ReportJob) ReportResponse {
	return ReportResponse{
		JobID:     job.ID.String(),
		YearMonth: job.YearMonth,
		Status:    string(job.Status),
	}
}
