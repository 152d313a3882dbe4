package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker/internal/core/ports/services"
	"github.com/SscSPs/money_tracker/internal/dto"
	"github.com/shopspring/decimal"
)

// budgetService manages budgets and their allocations.
type budgetService struct {
	BaseService
	uow     portsrepo.UnitOfWork
	tracker portssvc.BudgetAllocationTracker
}

// NewBudgetService creates the budget lifecycle manager.
func NewBudgetService(uow portsrepo.UnitOfWork, tracker portssvc.BudgetAllocationTracker) portssvc.BudgetSvcFacade {
	return &budgetService{
		BaseService: newBaseService(),
		uow:         uow,
		tracker:     tracker,
	}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// ensureNameFree fails with ErrDuplicateBudgetName when another budget of the user has name.
func ensureNameFree(ctx context.Context, tx portsrepo.Store, userID, name, excludeBudgetID string) error {
	existing, err := tx.Budgets().FindBudgetByName(ctx, userID, name)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.BudgetID == excludeBudgetID:
		return nil
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrDuplicateBudgetName, name)
	}
}

// duplicateName converts a unique constraint violation into the budget name error.
func duplicateName(err error, name string) error {
	if errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrDuplicateBudgetName) {
		return fmt.Errorf("%w: %q", apperrors.ErrDuplicateBudgetName, name)
	}
	return err
}

// addAllocation validates and stores one allocation of budget. The spent amount starts at the
// user's expenses already recorded for the category inside the budget period.
func (s *budgetService) addAllocation(ctx context.Context, tx portsrepo.Store, budget domain.Budget, categoryID string, amount decimal.Decimal, userID string) (*domain.BudgetCategory, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return nil, validationError("category is required")
	}
	if !amount.IsPositive() {
		return nil, validationError("allocated amount must be greater than zero")
	}
	if err := domain.CheckAmountScale(amount); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	category, err := tx.Categories().FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.Type != domain.CategoryExpense {
		return nil, validationError("only EXPENSE categories can be budgeted, %q is %s", category.Name, category.Type)
	}

	existing, err := tx.Budgets().ListBudgetCategories(ctx, budget.BudgetID)
	if err != nil {
		return nil, err
	}
	for _, bc := range existing {
		if bc.CategoryID == categoryID {
			return nil, fmt.Errorf("category %q already allocated in budget: %w", category.Name, apperrors.ErrDuplicate)
		}
	}

	if err := s.tracker.ValidateAllocation(ctx, tx, budget.BudgetID, categoryID, amount); err != nil {
		return nil, err
	}
	if err := s.tracker.CheckOverlap(ctx, tx, budget.UserID, categoryID, budget.StartDate, budget.EndDate, budget.BudgetID); err != nil {
		return nil, err
	}
	spent, err := s.tracker.CurrentUsage(ctx, tx, budget.UserID, categoryID, budget.StartDate, budget.EndDate)
	if err != nil {
		return nil, err
	}

	bc := domain.BudgetCategory{
		BudgetCategoryID: uuid.NewString(),
		BudgetID:         budget.BudgetID,
		CategoryID:       categoryID,
		AllocatedAmount:  amount,
		SpentAmount:      decimal.Max(decimal.Zero, spent),
		AuditFields:      domain.NewAuditFields(userID, s.Now()),
	}
	if err := tx.Budgets().SaveBudgetCategory(ctx, bc); err != nil {
		return nil, err
	}
	return &bc, nil
}

// CreateBudget stores a budget and any initial allocations as one unit.
func (s *budgetService) CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error) {
	logger := s.GetLogger(ctx)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("budget name is required")
	}
	if !req.TotalAmount.IsPositive() {
		return nil, validationError("total amount must be greater than zero")
	}
	if err := domain.CheckAmountScale(req.TotalAmount); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	start := domain.TruncateDay(req.StartDate)
	end, err := domain.DeriveEndDate(req.PeriodType, start, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	budget := domain.Budget{
		BudgetID:    uuid.NewString(),
		UserID:      userID,
		Name:        name,
		PeriodType:  req.PeriodType,
		StartDate:   start,
		EndDate:     end,
		TotalAmount: req.TotalAmount,
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		if err := ensureNameFree(ctx, tx, userID, name, ""); err != nil {
			return err
		}
		if err := tx.Budgets().SaveBudget(ctx, budget); err != nil {
			return duplicateName(err, name)
		}
		for _, alloc := range req.Categories {
			if _, err := s.addAllocation(ctx, tx, budget, alloc.CategoryID, alloc.AllocatedAmount, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create budget", slog.String("name", name))
		return nil, err
	}

	logger.Info("Budget created",
		slog.String("budget_id", budget.BudgetID),
		slog.String("period", string(budget.PeriodType)),
		slog.String("start", budget.StartDate.Format(time.DateOnly)),
		slog.String("end", budget.EndDate.Format(time.DateOnly)))
	return &budget, nil
}

// UpdateBudget changes name, total or period. A new period is only accepted while no usage
// has been tracked against the budget, and it must not overlap other budgets.
func (s *budgetService) UpdateBudget(ctx context.Context, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.Budget, error) {
	var updated domain.Budget
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		current, err := ownedBudget(ctx, tx, budgetID, userID)
		if err != nil {
			return err
		}
		updated = *current

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return validationError("budget name is required")
			}
			if name != current.Name {
				if err := ensureNameFree(ctx, tx, userID, name, budgetID); err != nil {
					return err
				}
			}
			updated.Name = name
		}

		allocations, err := tx.Budgets().ListBudgetCategories(ctx, budgetID)
		if err != nil {
			return err
		}

		if req.TotalAmount != nil {
			if !req.TotalAmount.IsPositive() {
				return validationError("total amount must be greater than zero")
			}
			if err := domain.CheckAmountScale(*req.TotalAmount); err != nil {
				return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
			}
			allocated := decimal.Zero
			for _, bc := range allocations {
				allocated = allocated.Add(bc.AllocatedAmount)
			}
			if allocated.GreaterThan(*req.TotalAmount) {
				return fmt.Errorf("%w: allocations total %s, new total %s", apperrors.ErrAllocationExceedsBudget, allocated, req.TotalAmount)
			}
			updated.TotalAmount = *req.TotalAmount
		}

		if req.PeriodType != nil || req.StartDate != nil || req.EndDate != nil {
			if err := s.changePeriod(ctx, tx, &updated, req, allocations); err != nil {
				return err
			}
		}

		updated.Touch(userID, s.Now())
		return duplicateName(tx.Budgets().UpdateBudget(ctx, updated), updated.Name)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update budget", slog.String("budget_id", budgetID))
		return nil, err
	}

	s.GetLogger(ctx).Info("Budget updated", slog.String("budget_id", budgetID))
	return &updated, nil
}

func (s *budgetService) changePeriod(ctx context.Context, tx portsrepo.Store, b *domain.Budget, req dto.UpdateBudgetRequest, allocations []domain.BudgetCategory) error {
	periodType := b.PeriodType
	if req.PeriodType != nil {
		periodType = *req.PeriodType
	}
	start := b.StartDate
	if req.StartDate != nil {
		start = domain.TruncateDay(*req.StartDate)
	}
	customEnd := req.EndDate
	if customEnd == nil && periodType == domain.PeriodCustom && b.PeriodType == domain.PeriodCustom {
		customEnd = &b.EndDate
	}
	end, err := domain.DeriveEndDate(periodType, start, customEnd)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	if periodType == b.PeriodType && start.Equal(b.StartDate) && end.Equal(b.EndDate) {
		return nil
	}

	for _, bc := range allocations {
		if !bc.SpentAmount.IsZero() {
			return validationError("period cannot change once spending is tracked; copy the budget to a new period instead")
		}
		if err := s.tracker.CheckOverlap(ctx, tx, b.UserID, bc.CategoryID, start, end, b.BudgetID); err != nil {
			return err
		}
		usage, err := s.tracker.CurrentUsage(ctx, tx, b.UserID, bc.CategoryID, start, end)
		if err != nil {
			return err
		}
		if !usage.IsZero() {
			return validationError("expenses already exist in the new period; copy the budget to a new period instead")
		}
	}

	b.PeriodType, b.StartDate, b.EndDate = periodType, start, end
	return nil
}

// DeleteBudget removes the allocations and then the budget.
func (s *budgetService) DeleteBudget(ctx context.Context, budgetID string, userID string) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		if _, err := ownedBudget(ctx, tx, budgetID, userID); err != nil {
			return err
		}
		if err := tx.Budgets().DeleteBudgetCategoriesByBudget(ctx, budgetID); err != nil {
			return err
		}
		return tx.Budgets().DeleteBudget(ctx, budgetID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete budget", slog.String("budget_id", budgetID))
		return err
	}
	s.GetLogger(ctx).Info("Budget deleted", slog.String("budget_id", budgetID))
	return nil
}

// CopyBudget creates a budget for a new period. A CUSTOM budget keeps its length in days.
func (s *budgetService) CopyBudget(ctx context.Context, budgetID string, req dto.CopyBudgetRequest, userID string) (*domain.Budget, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("budget name is required")
	}
	if req.StartDate.IsZero() {
		return nil, validationError("start date is required")
	}
	start := domain.TruncateDay(req.StartDate)

	var copied domain.Budget
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		source, err := ownedBudget(ctx, tx, budgetID, userID)
		if err != nil {
			return err
		}

		var customEnd *time.Time
		if source.PeriodType == domain.PeriodCustom {
			e := start.AddDate(0, 0, source.LengthDays()-1)
			customEnd = &e
		}
		end, err := domain.DeriveEndDate(source.PeriodType, start, customEnd)
		if err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}

		if err := ensureNameFree(ctx, tx, userID, name, ""); err != nil {
			return err
		}
		copied = domain.Budget{
			BudgetID:    uuid.NewString(),
			UserID:      userID,
			Name:        name,
			PeriodType:  source.PeriodType,
			StartDate:   start,
			EndDate:     end,
			TotalAmount: source.TotalAmount,
			AuditFields: domain.NewAuditFields(userID, s.Now()),
		}
		if err := tx.Budgets().SaveBudget(ctx, copied); err != nil {
			return duplicateName(err, name)
		}

		allocations, err := tx.Budgets().ListBudgetCategories(ctx, budgetID)
		if err != nil {
			return err
		}
		for _, bc := range allocations {
			if _, err := s.addAllocation(ctx, tx, copied, bc.CategoryID, bc.AllocatedAmount, userID); err != nil {
				return fmt.Errorf("copy allocation %s: %w", bc.CategoryID, err)
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to copy budget", slog.String("budget_id", budgetID))
		return nil, err
	}

	s.GetLogger(ctx).Info("Budget copied",
		slog.String("source_budget_id", budgetID),
		slog.String("budget_id", copied.BudgetID))
	return &copied, nil
}

func (s *budgetService) AddBudgetCategory(ctx context.Context, budgetID string, req dto.AllocationRequest, userID string) (*domain.BudgetCategory, error) {
	var bc *domain.BudgetCategory
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		budget, err := ownedBudget(ctx, tx, budgetID, userID)
		if err != nil {
			return err
		}
		bc, err = s.addAllocation(ctx, tx, *budget, req.CategoryID, req.AllocatedAmount, userID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to add budget category", slog.String("budget_id", budgetID), slog.String("category_id", req.CategoryID))
		return nil, err
	}
	s.GetLogger(ctx).Info("Budget category added", slog.String("budget_id", budgetID), slog.String("budget_category_id", bc.BudgetCategoryID))
	return bc, nil
}

func (s *budgetService) UpdateBudgetCategory(ctx context.Context, budgetID, budgetCategoryID string, req dto.UpdateAllocationRequest, userID string) (*domain.BudgetCategory, error) {
	if !req.AllocatedAmount.IsPositive() {
		return nil, validationError("allocated amount must be greater than zero")
	}
	if err := domain.CheckAmountScale(req.AllocatedAmount); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	var bc *domain.BudgetCategory
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		budget, err := ownedBudget(ctx, tx, budgetID, userID)
		if err != nil {
			return err
		}
		bc, err = budgetCategoryOf(ctx, tx, budgetID, budgetCategoryID)
		if err != nil {
			return err
		}
		if err := s.tracker.ValidateAllocation(ctx, tx, budgetID, bc.CategoryID, req.AllocatedAmount); err != nil {
			return err
		}
		if err := s.tracker.CheckOverlap(ctx, tx, userID, bc.CategoryID, budget.StartDate, budget.EndDate, budgetID); err != nil {
			return err
		}
		now := s.Now()
		if err := tx.Budgets().UpdateAllocatedAmount(ctx, budgetCategoryID, req.AllocatedAmount, userID, now); err != nil {
			return err
		}
		bc.AllocatedAmount = req.AllocatedAmount
		bc.Touch(userID, now)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update budget category", slog.String("budget_category_id", budgetCategoryID))
		return nil, err
	}
	return bc, nil
}

func (s *budgetService) RemoveBudgetCategory(ctx context.Context, budgetID, budgetCategoryID string, userID string) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		if _, err := ownedBudget(ctx, tx, budgetID, userID); err != nil {
			return err
		}
		if _, err := budgetCategoryOf(ctx, tx, budgetID, budgetCategoryID); err != nil {
			return err
		}
		return tx.Budgets().DeleteBudgetCategory(ctx, budgetCategoryID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to remove budget category", slog.String("budget_category_id", budgetCategoryID))
		return err
	}
	s.GetLogger(ctx).Info("Budget category removed", slog.String("budget_category_id", budgetCategoryID))
	return nil
}

func (s *budgetService) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	budgets, err := s.uow.Budgets().ListBudgets(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list budgets")
		return nil, err
	}
	if budgets == nil {
		budgets = []domain.Budget{}
	}
	return budgets, nil
}
