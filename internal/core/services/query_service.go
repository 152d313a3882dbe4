package services

import (
	"context"
	"log/slog"

	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker/internal/core/ports/services"
	"github.com/SscSPs/money_tracker/internal/dto"
	"github.com/shopspring/decimal"
)

// queryService answers read-only questions outside any unit of work.
type queryService struct {
	BaseService
	uow portsrepo.UnitOfWork
}

// NewQueryService creates the query surface.
func NewQueryService(uow portsrepo.UnitOfWork) portssvc.QuerySvc {
	return &queryService{BaseService: newBaseService(), uow: uow}
}

func (s *queryService) GetAccountBalance(ctx context.Context, accountID string, userID string) (decimal.Decimal, error) {
	account, err := ownedAccount(ctx, s.uow, accountID, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to get account balance", slog.String("account_id", accountID))
		return decimal.Zero, err
	}
	return account.Balance, nil
}

func (s *queryService) GetBudgetWithCategories(ctx context.Context, budgetID string, userID string) (*dto.BudgetWithCategories, error) {
	budget, err := ownedBudget(ctx, s.uow, budgetID, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to get budget", slog.String("budget_id", budgetID))
		return nil, err
	}
	categories, err := s.uow.Budgets().ListBudgetCategories(ctx, budgetID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list budget categories", slog.String("budget_id", budgetID))
		return nil, err
	}
	return &dto.BudgetWithCategories{Budget: *budget, Categories: categories}, nil
}

// GetUsagePercentage returns spent/allocated*100 rounded to two places.
func (s *queryService) GetUsagePercentage(ctx context.Context, budgetCategoryID string, userID string) (decimal.Decimal, error) {
	bc, err := s.uow.Budgets().FindBudgetCategoryByID(ctx, budgetCategoryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to get budget category", slog.String("budget_category_id", budgetCategoryID))
		return decimal.Zero, err
	}
	if _, err := ownedBudget(ctx, s.uow, bc.BudgetID, userID); err != nil {
		return decimal.Zero, err
	}
	return bc.UsagePercentage(), nil
}
