package sqlite

import (
	"context"
	"fmt"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/SscSPs/money_tracker/internal/models"
	"github.com/SscSPs/money_tracker/internal/utils/mapping"
)

type categoryRepository struct{ base }

const categoryColumns = `category_id, name, type, ` + auditColumns

func scanCategory(row rowScanner) (domain.Category, error) {
	var m models.Category
	var audit auditCols
	if err := row.Scan(append([]any{&m.CategoryID, &m.Name, &m.Type}, audit.dest()...)...); err != nil {
		return domain.Category{}, err
	}
	var err error
	if m.AuditFields, err = audit.model(); err != nil {
		return domain.Category{}, err
	}
	return mapping.ToDomainCategory(m), nil
}

func (r *categoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE category_id = ?`, categoryID))
	if err != nil {
		return nil, notFoundOr(err, fmt.Errorf("%w: %s", apperrors.ErrCategoryNotFound, categoryID),
			"failed to find category %s", categoryID)
	}
	return &c, nil
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name, category_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) IsCategoryReferenced(ctx context.Context, categoryID string) (bool, error) {
	var referenced bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = ?1)
		    OR EXISTS (SELECT 1 FROM budget_categories WHERE category_id = ?1)`, categoryID).Scan(&referenced)
	if err != nil {
		return false, fmt.Errorf("failed to check references of category %s: %w", categoryID, err)
	}
	return referenced, nil
}

func (r *categoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)
	args := append([]any{m.CategoryID, m.Name, m.Type}, auditArgs(m.AuditFields)...)
	if _, err := r.db.ExecContext(ctx, `INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category with ID %s already exists", apperrors.ErrDuplicate, m.CategoryID)
		}
		return fmt.Errorf("failed to save category %s: %w", m.CategoryID, err)
	}
	return nil
}

func (r *categoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, last_updated_at = ?, last_updated_by = ? WHERE category_id = ?`,
		category.Name, string(category.Type), ts(category.LastUpdatedAt), category.LastUpdatedBy, category.CategoryID)
	return exactlyOne(res, err, fmt.Errorf("%w: %s", apperrors.ErrCategoryNotFound, category.CategoryID),
		"failed to update category %s", category.CategoryID)
}
