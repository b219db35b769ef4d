package dto

import "github.com/salon-ledger/backend/internal/domain/entity"

// CreateTreatmentRequest represents the request body for treatment creation.
type CreateTreatmentRequest struct {
	Name  string `json:"name" binding:"required"`
	Price int64  `json:"price"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// UpdateTreatmentRequest represents the request body for treatment updates.
type UpdateTreatmentRequest struct {
	Name  string `json:"name" binding:"required"`
	Price int64  `json:"price"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// ReorderRequest represents the request body for reordering entities.
// The ids arrive in their new display order.
type ReorderRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// TreatmentResponse represents a treatment in API responses.
type TreatmentResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

// TreatmentListResponse represents the treatment list response.
type TreatmentListResponse struct {
	Treatments []TreatmentResponse `json:"treatments"`
}

// ToTreatmentResponse converts a Treatment entity to its response DTO.
func ToTreatmentResponse(t *entity.Treatment) TreatmentResponse {
	return TreatmentResponse{
		ID:    t.ID,
		Name:  t.Name,
		Price: t.Price,
		Icon:  t.Icon,
		Color: t.Color,
		Order: t.Order,
	}
}

// ToTreatmentListResponse converts a slice of treatments to the list response.
func ToTreatmentListResponse(treatments []entity.Treatment) TreatmentListResponse {
	out := make([]TreatmentResponse, len(treatments))
	for i := range treatments {
		out[i] = ToTreatmentResponse(&treatments[i])
	}
	return TreatmentListResponse{Treatments: out}
}
