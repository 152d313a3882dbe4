package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetReader defines read operations for budgets
type BudgetReader interface {
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// FindBudgetByName looks a budget up by its per-user unique name.
	FindBudgetByName(ctx context.Context, userID, name string) (*domain.Budget, error)

	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)

	// FindOverlappingBudgets returns the user's budgets, other than excludeBudgetID, that allocate
	// categoryID and whose period intersects the closed interval [start, end].
	FindOverlappingBudgets(ctx context.Context, userID, categoryID string, start, end time.Time, excludeBudgetID string) ([]domain.Budget, error)
}

// BudgetWriter defines write operations for budgets
type BudgetWriter interface {
	SaveBudget(ctx context.Context, budget domain.Budget) error
	UpdateBudget(ctx context.Context, budget domain.Budget) error

	// DeleteBudget removes the budget row. Allocations must be deleted first.
	DeleteBudget(ctx context.Context, budgetID string) error
}

// BudgetCategoryReader defines read operations for allocations
type BudgetCategoryReader interface {
	FindBudgetCategoryByID(ctx context.Context, budgetCategoryID string) (*domain.BudgetCategory, error)

	// ListBudgetCategories returns the allocations of a budget ordered by creation time.
	ListBudgetCategories(ctx context.Context, budgetID string) ([]domain.BudgetCategory, error)
}

// BudgetCategoryWriter defines write operations for allocations
type BudgetCategoryWriter interface {
	SaveBudgetCategory(ctx context.Context, bc domain.BudgetCategory) error

	// UpdateAllocatedAmount changes the allocated amount only; spent is owned by ApplyUsageDelta.
	UpdateAllocatedAmount(ctx context.Context, budgetCategoryID string, amount decimal.Decimal, userID string, now time.Time) error

	DeleteBudgetCategory(ctx context.Context, budgetCategoryID string) error
	DeleteBudgetCategoriesByBudget(ctx context.Context, budgetID string) error
}

// BudgetUsageSupport holds the operations that keep allocation usage consistent.
type BudgetUsageSupport interface {
	// ApplyUsageDelta adds delta to the spent amount of every allocation of categoryID in the
	// user's budgets whose period contains date, flooring each at zero, and returns the
	// allocations as they are after the write.
	ApplyUsageDelta(ctx context.Context, userID, categoryID string, date time.Time, delta decimal.Decimal, actorID string, now time.Time) ([]domain.BudgetCategory, error)

	// LockCategoryAllocations serialises allocation changes of one (user, category) pair until
	// the unit of work ends.
	LockCategoryAllocations(ctx context.Context, userID, categoryID string) error
}

// BudgetRepositoryFacade combines all budget-related repository interfaces
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
	BudgetCategoryReader
	BudgetCategoryWriter
	BudgetUsageSupport
}
