package entity

import (
	"fmt"
	"regexp"
	"time"
)

// yearMonthRegex validates the "yyyy-MM" key used by monthly expenses.
var yearMonthRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// MonthlyExpense is the recorded amount for one expense category in one
// calendar month. There is at most one expense per (yearMonth, category)
// pair; writing again replaces the amount.
type MonthlyExpense struct {
	ID         string
	YearMonth  string // "yyyy-MM"
	CategoryID string
	Amount     int64
	CreatedAt  time.Time
}

// NewMonthlyExpense creates a new MonthlyExpense entity.
func NewMonthlyExpense(yearMonth, categoryID string, amount int64) *MonthlyExpense {
	return &MonthlyExpense{
		YearMonth:  yearMonth,
		CategoryID: categoryID,
		Amount:     amount,
		CreatedAt:  time.Now().UTC(),
	}
}

// IsValidYearMonth reports whether s is a well-formed "yyyy-MM" key.
func IsValidYearMonth(s string) bool {
	return yearMonthRegex.MatchString(s)
}

// FormatYearMonth builds the "yyyy-MM" key for a year and month.
func FormatYearMonth(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}
