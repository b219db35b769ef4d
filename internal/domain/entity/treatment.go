// Package entity defines the core business entities for the domain layer.
package entity

import "time"

// MaxTreatmentNameLength is the maximum allowed length for treatment names.
const MaxTreatmentNameLength = 30

// MaxIconLength is the maximum allowed length for icons (a single emoji).
const MaxIconLength = 2

// Treatment represents a billable service type offered by the shop,
// e.g. a gel manicure with a price, display color and emoji icon.
type Treatment struct {
	ID        string
	Name      string
	Price     int64
	Icon      string // optional, empty when unset
	Color     string // hex color, e.g. "#FFA0B9"
	Order     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTreatment creates a new Treatment entity. The document id is assigned
// by the store on creation.
func NewTreatment(name string, price int64, icon, color string, order int) *Treatment {
	now := time.Now().UTC()

	return &Treatment{
		Name:      name,
		Price:     price,
		Icon:      icon,
		Color:     color,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
