package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/money_tracker/internal/models"
	"github.com/SscSPs/money_tracker/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxBudgetRepository struct {
	BaseRepository
}

var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

const budgetColumns = `budget_id, user_id, name, period_type, start_date, end_date, total_amount,
	created_at, created_by, last_updated_at, last_updated_by`

const budgetCategoryColumns = `budget_category_id, budget_id, category_id, allocated_amount, spent_amount,
	created_at, created_by, last_updated_at, last_updated_by`

func scanBudget(row rowScanner) (domain.Budget, error) {
	var m models.Budget
	err := row.Scan(
		&m.BudgetID, &m.UserID, &m.Name, &m.PeriodType, &m.StartDate, &m.EndDate, &m.TotalAmount,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Budget{}, err
	}
	return mapping.ToDomainBudget(m), nil
}

func scanBudgetCategory(row rowScanner) (domain.BudgetCategory, error) {
	var m models.BudgetCategory
	err := row.Scan(
		&m.BudgetCategoryID, &m.BudgetID, &m.CategoryID, &m.AllocatedAmount, &m.SpentAmount,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return domain.BudgetCategory{}, err
	}
	return mapping.ToDomainBudgetCategory(m), nil
}

func collectBudgets(rows pgx.Rows, err error) ([]domain.Budget, error) {
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

func collectBudgetCategories(rows pgx.Rows, err error) ([]domain.BudgetCategory, error) {
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

func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	b, err := scanBudget(r.db.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE budget_id = $1;`, budgetID))
	if err != nil {
		return nil, notFoundOr(err, fmt.Errorf("%w: %s", apperrors.ErrBudgetNotFound, budgetID),
			"failed to find budget %s", budgetID)
	}
	return &b, nil
}

func (r *PgxBudgetRepository) FindBudgetByName(ctx context.Context, userID, name string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 AND name = $2;`
	b, err := scanBudget(r.db.QueryRow(ctx, query, userID, name))
	if err != nil {
		return nil, notFoundOr(err, fmt.Errorf("%w: %q", apperrors.ErrBudgetNotFound, name),
			"failed to find budget named %q", name)
	}
	return &b, nil
}

func (r *PgxBudgetRepository) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 ORDER BY start_date, name;`
	return collectBudgets(r.db.Query(ctx, query, userID))
}

func (r *PgxBudgetRepository) FindOverlappingBudgets(ctx context.Context, userID, categoryID string, start, end time.Time, excludeBudgetID string) ([]domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets b
		WHERE b.user_id = $1
		  AND b.budget_id <> $5
		  AND b.start_date <= $4 AND b.end_date >= $3
		  AND EXISTS (SELECT 1 FROM budget_categories bc WHERE bc.budget_id = b.budget_id AND bc.category_id = $2)
		ORDER BY b.start_date;
	`
	return collectBudgets(r.db.Query(ctx, query, userID, categoryID, start, end, excludeBudgetID))
}

func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)
	query := `INSERT INTO budgets (` + budgetColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`
	_, err := r.db.Exec(ctx, query,
		m.BudgetID, m.UserID, m.Name, m.PeriodType, m.StartDate, m.EndDate, m.TotalAmount,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", apperrors.ErrDuplicateBudgetName, m.Name)
		}
		return fmt.Errorf("failed to save budget %s: %w", m.BudgetID, err)
	}
	return nil
}

func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)
	query := `
		UPDATE budgets
		SET name = $2, period_type = $3, start_date = $4, end_date = $5, total_amount = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE budget_id = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		m.BudgetID, m.Name, m.PeriodType, m.StartDate, m.EndDate, m.TotalAmount, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("%w: %q", apperrors.ErrDuplicateBudgetName, m.Name)
	}
	return exactlyOne(tag, err, fmt.Errorf("%w: %s", apperrors.ErrBudgetNotFound, m.BudgetID),
		"failed to update budget %s", m.BudgetID)
}

func (r *PgxBudgetRepository) DeleteBudget(ctx context.Context, budgetID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM budgets WHERE budget_id = $1;`, budgetID)
	return exactlyOne(tag, err, fmt.Errorf("%w: %s", apperrors.ErrBudgetNotFound, budgetID),
		"failed to delete budget %s", budgetID)
}

func (r *PgxBudgetRepository) FindBudgetCategoryByID(ctx context.Context, budgetCategoryID string) (*domain.BudgetCategory, error) {
	query := `SELECT ` + budgetCategoryColumns + ` FROM budget_categories WHERE budget_category_id = $1;`
	bc, err := scanBudgetCategory(r.db.QueryRow(ctx, query, budgetCategoryID))
	if err != nil {
		return nil, notFoundOr(err, fmt.Errorf("%w: %s", apperrors.ErrBudgetCategoryNotFound, budgetCategoryID),
			"failed to find budget category %s", budgetCategoryID)
	}
	return &bc, nil
}

func (r *PgxBudgetRepository) ListBudgetCategories(ctx context.Context, budgetID string) ([]domain.BudgetCategory, error) {
	query := `SELECT ` + budgetCategoryColumns + ` FROM budget_categories WHERE budget_id = $1 ORDER BY created_at, budget_category_id;`
	return collectBudgetCategories(r.db.Query(ctx, query, budgetID))
}

func (r *PgxBudgetRepository) SaveBudgetCategory(ctx context.Context, bc domain.BudgetCategory) error {
	m := mapping.ToModelBudgetCategory(bc)
	query := `INSERT INTO budget_categories (` + budgetCategoryColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`
	_, err := r.db.Exec(ctx, query,
		m.BudgetCategoryID, m.BudgetID, m.CategoryID, m.AllocatedAmount, m.SpentAmount,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %s is already allocated in budget %s", apperrors.ErrDuplicate, m.CategoryID, m.BudgetID)
		}
		return fmt.Errorf("failed to save budget category %s: %w", m.BudgetCategoryID, err)
	}
	return nil
}

func (r *PgxBudgetRepository) UpdateAllocatedAmount(ctx context.Context, budgetCategoryID string, amount decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE budget_categories
		SET allocated_amount = $2, last_updated_at = $3, last_updated_by = $4
		WHERE budget_category_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, budgetCategoryID, amount, now, userID)
	return exactlyOne(tag, err, fmt.Errorf("%w: %s", apperrors.ErrBudgetCategoryNotFound, budgetCategoryID),
		"failed to update allocation %s", budgetCategoryID)
}

func (r *PgxBudgetRepository) DeleteBudgetCategory(ctx context.Context, budgetCategoryID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM budget_categories WHERE budget_category_id = $1;`, budgetCategoryID)
	return exactlyOne(tag, err, fmt.Errorf("%w: %s", apperrors.ErrBudgetCategoryNotFound, budgetCategoryID),
		"failed to delete allocation %s", budgetCategoryID)
}

func (r *PgxBudgetRepository) DeleteBudgetCategoriesByBudget(ctx context.Context, budgetID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM budget_categories WHERE budget_id = $1;`, budgetID); err != nil {
		return fmt.Errorf("failed to delete allocations of budget %s: %w", budgetID, err)
	}
	return nil
}

// ApplyUsageDelta moves spent on every matching allocation in one statement. Spent never drops below zero.
func (r *PgxBudgetRepository) ApplyUsageDelta(ctx context.Context, userID, categoryID string, date time.Time, delta decimal.Decimal, actorID string, now time.Time) ([]domain.BudgetCategory, error) {
	query := `
		UPDATE budget_categories bc
		SET spent_amount = GREATEST(0, bc.spent_amount + $4), last_updated_at = $5, last_updated_by = $6
		FROM budgets b
		WHERE bc.budget_id = b.budget_id
		  AND b.user_id = $1
		  AND bc.category_id = $2
		  AND $3 BETWEEN b.start_date AND b.end_date
		RETURNING bc.budget_category_id, bc.budget_id, bc.category_id, bc.allocated_amount, bc.spent_amount,
		          bc.created_at, bc.created_by, bc.last_updated_at, bc.last_updated_by;
	`
	bcs, err := collectBudgetCategories(r.db.Query(ctx, query, userID, categoryID, domain.TruncateDay(date), delta, now, actorID))
	if err != nil {
		return nil, fmt.Errorf("failed to apply usage delta to category %s: %w", categoryID, err)
	}
	return bcs, nil
}

// LockCategoryAllocations takes a transaction scoped advisory lock keyed by user and category.
func (r *PgxBudgetRepository) LockCategoryAllocations(ctx context.Context, userID, categoryID string) error {
	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0));`, userID, categoryID); err != nil {
		return fmt.Errorf("failed to lock allocations of category %s: %w", categoryID, err)
	}
	return nil
}
