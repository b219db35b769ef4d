package entity

import "time"

// DailyRecord aggregates how many times one treatment was performed on one
// day and the revenue it produced. There is at most one record per
// (date, treatment) pair; repeated selections increment Count instead of
// creating new documents.
type DailyRecord struct {
	ID          string
	Date        time.Time // truncated to start of day, UTC
	TreatmentID string
	Count       int
	TotalAmount int64
	CreatedAt   time.Time
}

// NewDailyRecord creates a record for a first selection of a treatment on a day.
func NewDailyRecord(date time.Time, treatmentID string, count int, totalAmount int64) *DailyRecord {
	return &DailyRecord{
		Date:        StartOfDay(date),
		TreatmentID: treatmentID,
		Count:       count,
		TotalAmount: totalAmount,
		CreatedAt:   time.Now().UTC(),
	}
}

// UnitPrice returns the per-unit price of the record, 0 when Count is 0.
func (r *DailyRecord) UnitPrice() int64 {
	if r.Count <= 0 {
		return 0
	}
	return r.TotalAmount / int64(r.Count)
}

// StartOfDay truncates a time to midnight UTC of the same calendar day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last nanosecond of the same calendar day in UTC.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// MonthRange returns the inclusive [first day, last day] bounds of a month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, EndOfDay(end)
}
