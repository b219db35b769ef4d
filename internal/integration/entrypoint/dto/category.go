package dto

import "github.com/salon-ledger/backend/internal/domain/entity"

// CreateCategoryRequest represents the request body for category creation.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

// UpdateCategoryRequest represents the request body for category updates.
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

// CategoryResponse represents an expense category in API responses.
type CategoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Order int    `json:"order"`
}

// CategoryListResponse represents the category list response.
type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// ToCategoryResponse converts an ExpenseCategory entity to its response DTO.
func ToCategoryResponse(c *entity.ExpenseCategory) CategoryResponse {
	return CategoryResponse{
		ID:    c.ID,
		Name:  c.Name,
		Icon:  c.Icon,
		Order: c.Order,
	}
}

// ToCategoryListResponse converts a slice of categories to the list response.
func ToCategoryListResponse(categories []entity.ExpenseCategory) CategoryListResponse {
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return CategoryListResponse{Categories: out}
}
