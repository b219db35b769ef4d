package entity

import "time"

// MaxAdjustmentReasonLength is the maximum allowed length for adjustment reasons.
const MaxAdjustmentReasonLength = 50

// DailyAdjustment is a manual signed correction to a day's revenue.
// Negative amounts are discounts, positive amounts are tips or additions.
type DailyAdjustment struct {
	ID        string
	Date      time.Time // truncated to start of day, UTC
	Amount    int64
	Reason    string // optional, empty when unset
	CreatedAt time.Time
}

// NewDailyAdjustment creates a new DailyAdjustment entity.
func NewDailyAdjustment(date time.Time, amount int64, reason string) *DailyAdjustment {
	return &DailyAdjustment{
		Date:      StartOfDay(date),
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

// IsDiscount reports whether the adjustment reduces revenue.
func (a *DailyAdjustment) IsDiscount() bool {
	return a.Amount < 0
}

// IsAddition reports whether the adjustment increases revenue.
func (a *DailyAdjustment) IsAddition() bool {
	return a.Amount > 0
}
