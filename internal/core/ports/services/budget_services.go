package services

import (
	"context"

	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/SscSPs/money_tracker/internal/dto"
)

// BudgetWriterSvc manages budgets.
type BudgetWriterSvc interface {
	CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error)
	UpdateBudget(ctx context.Context, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, budgetID string, userID string) error

	// CopyBudget creates a budget for a new period with the same total, period type and
	// allocations. All of it is created or none.
	CopyBudget(ctx context.Context, budgetID string, req dto.CopyBudgetRequest, userID string) (*domain.Budget, error)
}

// BudgetAllocationSvc manages the allocations of a budget.
type BudgetAllocationSvc interface {
	AddBudgetCategory(ctx context.Context, budgetID string, req dto.AllocationRequest, userID string) (*domain.BudgetCategory, error)
	UpdateBudgetCategory(ctx context.Context, budgetID, budgetCategoryID string, req dto.UpdateAllocationRequest, userID string) (*domain.BudgetCategory, error)
	RemoveBudgetCategory(ctx context.Context, budgetID, budgetCategoryID string, userID string) error
}

// BudgetSvcFacade combines all budget-related service interfaces
type BudgetSvcFacade interface {
	BudgetWriterSvc
	BudgetAllocationSvc
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
}
