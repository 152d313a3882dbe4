package dto

import (
	"time"

	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AllocationRequest assigns part of a budget to an expense category.
type AllocationRequest struct {
	CategoryID      string          `json:"categoryID" binding:"required"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount" binding:"decimal_gt0"`
}

// CreateBudgetRequest defines the data needed to create a budget.
type CreateBudgetRequest struct {
	Name        string              `json:"name" binding:"required,max=255"`
	PeriodType  domain.PeriodType   `json:"periodType" binding:"required,oneof=WEEKLY MONTHLY QUARTERLY YEARLY CUSTOM"`
	StartDate   time.Time           `json:"startDate" binding:"required"`
	EndDate     *time.Time          `json:"endDate"` // CUSTOM only
	TotalAmount decimal.Decimal     `json:"totalAmount" binding:"decimal_gt0"`
	Categories  []AllocationRequest `json:"categories" binding:"omitempty,dive"`
}

// UpdateBudgetRequest changes a budget. Nil fields keep their current value.
type UpdateBudgetRequest struct {
	Name        *string            `json:"name" binding:"omitempty,min=1,max=255"`
	PeriodType  *domain.PeriodType `json:"periodType" binding:"omitempty,oneof=WEEKLY MONTHLY QUARTERLY YEARLY CUSTOM"`
	StartDate   *time.Time         `json:"startDate"`
	EndDate     *time.Time         `json:"endDate"`
	TotalAmount *decimal.Decimal   `json:"totalAmount" binding:"omitempty,decimal_gt0"`
}

// CopyBudgetRequest copies a budget into a new period.
type CopyBudgetRequest struct {
	Name      string    `json:"name" binding:"required,max=255"`
	StartDate time.Time `json:"startDate" binding:"required"`
}

// UpdateAllocationRequest changes the allocated amount of an allocation.
type UpdateAllocationRequest struct {
	AllocatedAmount decimal.Decimal `json:"allocatedAmount" binding:"decimal_gt0"`
}

// BudgetCategoryResponse is an allocation together with its usage.
type BudgetCategoryResponse struct {
	BudgetCategoryID string          `json:"budgetCategoryID"`
	CategoryID       string          `json:"categoryID"`
	AllocatedAmount  decimal.Decimal `json:"allocatedAmount"`
	SpentAmount      decimal.Decimal `json:"spentAmount"`
	Remaining        decimal.Decimal `json:"remaining"`
	UsagePercentage  decimal.Decimal `json:"usagePercentage"`
}

// BudgetResponse defines the data returned for a budget.
type BudgetResponse struct {
	BudgetID    string                   `json:"budgetID"`
	Name        string                   `json:"name"`
	PeriodType  domain.PeriodType        `json:"periodType"`
	StartDate   time.Time                `json:"startDate"`
	EndDate     time.Time                `json:"endDate"`
	TotalAmount decimal.Decimal          `json:"totalAmount"`
	Categories  []BudgetCategoryResponse `json:"categories,omitempty"`
}

// UsageResponse reports how much of an allocation is used.
type UsageResponse struct {
	BudgetCategoryID string          `json:"budgetCategoryID"`
	UsagePercentage  decimal.Decimal `json:"usagePercentage"`
}

// ToBudgetCategoryResponse converts an allocation to its DTO.
func ToBudgetCategoryResponse(bc *domain.BudgetCategory) BudgetCategoryResponse {
	return BudgetCategoryResponse{
		BudgetCategoryID: bc.BudgetCategoryID,
		CategoryID:       bc.CategoryID,
		AllocatedAmount:  bc.AllocatedAmount,
		SpentAmount:      bc.SpentAmount,
		Remaining:        bc.Remaining(),
		UsagePercentage:  bc.UsagePercentage(),
	}
}

// ToBudgetResponse converts a budget and its allocations to a DTO.
func ToBudgetResponse(b *domain.Budget, categories []domain.BudgetCategory) BudgetResponse {
	res := BudgetResponse{
		BudgetID:    b.BudgetID,
		Name:        b.Name,
		PeriodType:  b.PeriodType,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		TotalAmount: b.TotalAmount,
	}
	for _, bc := range categories {
		res.Categories = append(res.Categories, ToBudgetCategoryResponse(&bc))
	}
	return res
}

// BudgetWithCategories is a budget read together with its allocations.
type BudgetWithCategories struct {
	Budget     domain.Budget
	Categories []domain.BudgetCategory
}
