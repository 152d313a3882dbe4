package dto

import (
	"github.com/SscSPs/money_tracker/internal/core/domain"
)

// CreateCategoryRequest defines the data needed to create a category.
type CreateCategoryRequest struct {
	Name string              `json:"name" binding:"required,max=255"`
	Type domain.CategoryType `json:"type" binding:"required,oneof=INCOME EXPENSE"`
}

// UpdateCategoryRequest changes a category. Type can only change while nothing references it.
type UpdateCategoryRequest struct {
	Name *string              `json:"name" binding:"omitempty,min=1,max=255"`
	Type *domain.CategoryType `json:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
}

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID string              `json:"categoryID"`
	Name       string              `json:"name"`
	Type       domain.CategoryType `json:"type"`
}

// ToCategoryResponse converts a domain.Category to its DTO.
func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{CategoryID: c.CategoryID, Name: c.Name, Type: c.Type}
}

// ToListCategoryResponse converts categories to DTOs.
func ToListCategoryResponse(categories []domain.Category) []CategoryResponse {
	res := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		res[i] = ToCategoryResponse(&c)
	}
	return res
}
