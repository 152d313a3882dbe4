package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// budgetTracker owns allocation usage and the allocation rules.
type budgetTracker struct {
	BaseService
}

// NewBudgetTracker creates the budget allocation tracker.
func NewBudgetTracker() portssvc.BudgetAllocationTracker {
	return &budgetTracker{BaseService: newBaseService()}
}

var _ portssvc.BudgetAllocationTracker = (*budgetTracker)(nil)

func (t *budgetTracker) ApplyUsageDelta(ctx context.Context, tx portsrepo.Store, userID, categoryID string, signedAmount decimal.Decimal, effectiveDate time.Time) ([]domain.BudgetCategory, error) {
	if signedAmount.IsZero() {
		return nil, nil
	}
	day := domain.TruncateDay(effectiveDate)

	touched, err := tx.Budgets().ApplyUsageDelta(ctx, userID, categoryID, day, signedAmount, userID, t.Now())
	if err != nil {
		t.LogError(ctx, err, "Failed to apply budget usage delta",
			slog.String("category_id", categoryID),
			slog.String("delta", signedAmount.String()))
		return nil, err
	}

	t.GetLogger(ctx).Debug("Budget usage delta applied",
		slog.String("category_id", categoryID),
		slog.String("date", day.Format(time.DateOnly)),
		slog.String("delta", signedAmount.String()),
		slog.Int("allocations", len(touched)))
	return touched, nil
}

func (t *budgetTracker) ValidateAllocation(ctx context.Context, tx portsrepo.Store, budgetID, categoryID string, proposedAmount decimal.Decimal) error {
	budget, err := tx.Budgets().FindBudgetByID(ctx, budgetID)
	if err != nil {
		return err
	}
	allocations, err := tx.Budgets().ListBudgetCategories(ctx, budgetID)
	if err != nil {
		return err
	}

	sum := proposedAmount
	for _, bc := range allocations {
		if bc.CategoryID == categoryID {
			continue
		}
		sum = sum.Add(bc.AllocatedAmount)
	}
	if sum.GreaterThan(budget.TotalAmount) {
		return fmt.Errorf("%w: allocations would total %s of %s", apperrors.ErrAllocationExceedsBudget, sum, budget.TotalAmount)
	}
	return nil
}

func (t *budgetTracker) CheckOverlap(ctx context.Context, tx portsrepo.Store, userID, categoryID string, start, end time.Time, excludeBudgetID string) error {
	if err := tx.Budgets().LockCategoryAllocations(ctx, userID, categoryID); err != nil {
		return err
	}
	overlapping, err := tx.Budgets().FindOverlappingBudgets(ctx, userID, categoryID, domain.TruncateDay(start), domain.TruncateDay(end), excludeBudgetID)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		other := overlapping[0]
		return fmt.Errorf("%w: %q covers %s to %s", apperrors.ErrBudgetOverlap, other.Name,
			other.StartDate.Format(time.DateOnly), other.EndDate.Format(time.DateOnly))
	}
	return nil
}

func (t *budgetTracker) CurrentUsage(ctx context.Context, tx portsrepo.Store, userID, categoryID string, start, end time.Time) (decimal.Decimal, error) {
	return tx.Transactions().SumExpenses(ctx, userID, categoryID, domain.TruncateDay(start), domain.TruncateDay(end))
}
