package services

import (
	"context"

	"github.com/SscSPs/money_tracker/internal/dto"
	"github.com/shopspring/decimal"
)

// QuerySvc is the read-only surface over balances and budget usage.
type QuerySvc interface {
	GetAccountBalance(ctx context.Context, accountID string, userID string) (decimal.Decimal, error)
	GetBudgetWithCategories(ctx context.Context, budgetID string, userID string) (*dto.BudgetWithCategories, error)
	GetUsagePercentage(ctx context.Context, budgetCategoryID string, userID string) (decimal.Decimal, error)
}
