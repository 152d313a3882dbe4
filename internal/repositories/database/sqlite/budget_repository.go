package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/SscSPs/money_tracker/internal/models"
	"github.com/SscSPs/money_tracker/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

type budgetRepository struct{ base }

const budgetColumns = `budget_id, user_id, name, period_type, start_date, end_date, total_amount, ` + auditColumns

const budgetCategoryColumns = `budget_category_id, budget_id, category_id, allocated_amount, spent_amount, ` + auditColumns

func scanBudget(row rowScanner) (domain.Budget, error) {
	var m models.Budget
	var start, end string
	var audit auditCols
	dest := append([]any{&m.BudgetID, &m.UserID, &m.Name, &m.PeriodType, &start, &end, &m.TotalAmount}, audit.dest()...)
	if err := row.Scan(dest...); err != nil {
		return domain.Budget{}, err
	}
	var err error
	if m.StartDate, err = parseDay(start); err != nil {
		return domain.Budget{}, fmt.Errorf("parse start_date %q: %w", start, err)
	}
	if m.EndDate, err = parseDay(end); err != nil {
		return domain.Budget{}, fmt.Errorf("parse end_date %q: %w", end, err)
	}
	if m.AuditFields, err = audit.model(); err != nil {
		return domain.Budget{}, err
	}
	return mapping.ToDomainBudget(m), nil
}

func scanBudgetCategory(row rowScanner) (domain.BudgetCategory, error) {
	var m models.BudgetCategory
	var audit auditCols
	dest := append([]any{&m.BudgetCategoryID, &m.BudgetID, &m.CategoryID, &m.AllocatedAmount, &m.SpentAmount}, audit.dest()...)
	if err := row.Scan(dest...); err != nil {
		return domain.BudgetCategory{}, err
	}
	var err error
	if m.AuditFields, err = audit.model(); err != nil {
		return domain.BudgetCategory{}, err
	}
	return mapping.ToDomainBudgetCategory(m), nil
}

func collectBudgets(rows *sql.Rows, err error) ([]domain.Budget, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func collectBudgetCategories(rows *sql.Rows, err error) ([]domain.BudgetCategory, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query budget categories: %w", err)
	}
	defer rows.Close()

	var bcs []domain.BudgetCategory
	for rows.Next() {
		bc, err := scanBudgetCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget category row: %w", err)
		}
		bcs = append(bcs, bc)
	}
	return bcs, rows.Err()
}

func (r *budgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE budget_id = ?`, budgetID))
	if err != nil {
		return nil, notFoundOr(err, fmt.Errorf("%w: %s", apperrors.ErrBudgetNotFound, budgetID),
			"failed to find budget %s", budgetID)
	}
	return &b, nil
}

func (r *budgetRepository) FindBudgetByName(ctx context.Context, userID, name string) (*domain.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? AND name = ?`, userID, name))
	if err != nil {
		return nil, notFoundOr(err, fmt.Errorf("%w: %q", apperrors.ErrBudgetNotFound, name),
			"failed to find budget named %q", name)
	}
	return &b, nil
}

func (r *budgetRepository) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	return collectBudgets(r.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? ORDER BY start_date, name`, userID))
}

func (r *budgetRepository) FindOverlappingBudgets(ctx context.Context, userID, categoryID string, start, end time.Time, excludeBudgetID string) ([]domain.Budget, error) {
	return collectBudgets(r.db.QueryContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets b
		WHERE b.user_id = ?
		  AND b.budget_id <> ?
		  AND b.start_date <= ? AND b.end_date >= ?
		  AND EXISTS (SELECT 1 FROM budget_categories bc WHERE bc.budget_id = b.budget_id AND bc.category_id = ?)
		ORDER BY b.start_date`,
		userID, excludeBudgetID, day(end), day(start), categoryID))
}

func (r *budgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)
	args := append([]any{m.BudgetID, m.UserID, m.Name, m.PeriodType, day(m.StartDate), day(m.EndDate), m.TotalAmount.String()},
		auditArgs(m.AuditFields)...)
	if _, err := r.db.ExecContext(ctx, `INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", apperrors.ErrDuplicateBudgetName, m.Name)
		}
		return fmt.Errorf("failed to save budget %s: %w", m.BudgetID, err)
	}
	return nil
}

func (r *budgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)
	res, err := r.db.ExecContext(ctx, `
		UPDATE budgets
		SET name = ?, period_type = ?, start_date = ?, end_date = ?, total_amount = ?, last_updated_at = ?, last_updated_by = ?
		WHERE budget_id = ?`,
		m.Name, m.PeriodType, day(m.StartDate), day(m.EndDate), m.TotalAmount.String(),
		ts(m.LastUpdatedAt), m.LastUpdatedBy, m.BudgetID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %q", apperrors.ErrDuplicateBudgetName, m.Name)
	}
	return exactlyOne(res, err, fmt.Errorf("%w: %s", apperrors.ErrBudgetNotFound, m.BudgetID),
		"failed to update budget %s", m.BudgetID)
}

func (r *budgetRepository) DeleteBudget(ctx context.Context, budgetID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE budget_id = ?`, budgetID)
	return exactlyOne(res, err, fmt.Errorf("%w: %s", apperrors.ErrBudgetNotFound, budgetID),
		"failed to delete budget %s", budgetID)
}

func (r *budgetRepository) FindBudgetCategoryByID(ctx context.Context, budgetCategoryID string) (*domain.BudgetCategory, error) {
	bc, err := scanBudgetCategory(r.db.QueryRowContext(ctx,
		`SELECT `+budgetCategoryColumns+` FROM budget_categories WHERE budget_category_id = ?`, budgetCategoryID))
	if err != nil {
		return nil, notFoundOr(err, fmt.Errorf("%w: %s", apperrors.ErrBudgetCategoryNotFound, budgetCategoryID),
			"failed to find budget category %s", budgetCategoryID)
	}
	return &bc, nil
}

func (r *budgetRepository) ListBudgetCategories(ctx context.Context, budgetID string) ([]domain.BudgetCategory, error) {
	return collectBudgetCategories(r.db.QueryContext(ctx,
		`SELECT `+budgetCategoryColumns+` FROM budget_categories WHERE budget_id = ? ORDER BY created_at, budget_category_id`, budgetID))
}

func (r *budgetRepository) SaveBudgetCategory(ctx context.Context, bc domain.BudgetCategory) error {
	m := mapping.ToModelBudgetCategory(bc)
	args := append([]any{m.BudgetCategoryID, m.BudgetID, m.CategoryID, m.AllocatedAmount.String(), m.SpentAmount.String()},
		auditArgs(m.AuditFields)...)
	if _, err := r.db.ExecContext(ctx, `INSERT INTO budget_categories (`+budgetCategoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %s is already allocated in budget %s", apperrors.ErrDuplicate, m.CategoryID, m.BudgetID)
		}
		return fmt.Errorf("failed to save budget category %s: %w", m.BudgetCategoryID, err)
	}
	return nil
}

func (r *budgetRepository) UpdateAllocatedAmount(ctx context.Context, budgetCategoryID string, amount decimal.Decimal, userID string, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budget_categories SET allocated_amount = ?, last_updated_at = ?, last_updated_by = ? WHERE budget_category_id = ?`,
		amount.String(), ts(now), userID, budgetCategoryID)
	return exactlyOne(res, err, fmt.Errorf("%w: %s", apperrors.ErrBudgetCategoryNotFound, budgetCategoryID),
		"failed to update allocation %s", budgetCategoryID)
}

func (r *budgetRepository) DeleteBudgetCategory(ctx context.Context, budgetCategoryID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget_categories WHERE budget_category_id = ?`, budgetCategoryID)
	return exactlyOne(res, err, fmt.Errorf("%w: %s", apperrors.ErrBudgetCategoryNotFound, budgetCategoryID),
		"failed to delete allocation %s", budgetCategoryID)
}

func (r *budgetRepository) DeleteBudgetCategoriesByBudget(ctx context.Context, budgetID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budget_categories WHERE budget_id = ?`, budgetID); err != nil {
		return fmt.Errorf("failed to delete allocations of budget %s: %w", budgetID, err)
	}
	return nil
}

// ApplyUsageDelta updates the matching allocations one by one with the arithmetic done in decimal.
func (r *budgetRepository) ApplyUsageDelta(ctx context.Context, userID, categoryID string, date time.Time, delta decimal.Decimal, actorID string, now time.Time) ([]domain.BudgetCategory, error) {
	bcs, err := collectBudgetCategories(r.db.QueryContext(ctx, `
		SELECT bc.budget_category_id, bc.budget_id, bc.category_id, bc.allocated_amount, bc.spent_amount,
		       bc.created_at, bc.created_by, bc.last_updated_at, bc.last_updated_by
		FROM budget_categories bc
		JOIN budgets b ON b.budget_id = bc.budget_id
		WHERE b.user_id = ? AND bc.category_id = ? AND ? BETWEEN b.start_date AND b.end_date`,
		userID, categoryID, day(date)))
	if err != nil {
		return nil, fmt.Errorf("failed to load allocations of category %s: %w", categoryID, err)
	}

	for i := range bcs {
		bcs[i].ApplySpent(delta)
		bcs[i].Touch(actorID, now)
		_, err := r.db.ExecContext(ctx,
			`UPDATE budget_categories SET spent_amount = ?, last_updated_at = ?, last_updated_by = ? WHERE budget_category_id = ?`,
			bcs[i].SpentAmount.String(), ts(now), actorID, bcs[i].BudgetCategoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to apply usage delta to allocation %s: %w", bcs[i].BudgetCategoryID, err)
		}
	}
	return bcs, nil
}

// LockCategoryAllocations is a no-op; a unit of work already holds the only connection.
func (r *budgetRepository) LockCategoryAllocations(context.Context, string, string) error {
	return nil
}
