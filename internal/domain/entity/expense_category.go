package entity

import "time"

// MaxCategoryNameLength is the maximum allowed length for expense category names.
const MaxCategoryNameLength = 20

// ExpenseCategory represents a user-defined cost bucket for monthly expenses.
type ExpenseCategory struct {
	ID        string
	Name      string
	Icon      string // optional, empty when unset
	Order     int
	CreatedAt time.Time
}

// NewExpenseCategory creates a new ExpenseCategory entity.
func NewExpenseCategory(name, icon string, order int) *ExpenseCategory {
	return &ExpenseCategory{
		Name:      name,
		Icon:      icon,
		Order:     order,
		CreatedAt: time.Now().UTC(),
	}
}

// DefaultCategorySeed describes one of the categories seeded on first sign-in.
type DefaultCategorySeed struct {
	Name string
	Icon string
}

// DefaultCategories is the fixed set seeded for a new user, in display order.
var DefaultCategories = []DefaultCategorySeed{
	{Name: "재료비", Icon: "🧴"},
	{Name: "인건비", Icon: "👤"},
	{Name: "월세", Icon: "🏠"},
	{Name: "관리비", Icon: "🔧"},
	{Name: "기타", Icon: "💰"},
}
