package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/money_tracker/internal/models"
	"github.com/SscSPs/money_tracker/internal/utils/mapping"
)

type PgxCategoryRepository struct {
	BaseRepository
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

const categoryColumns = `category_id, name, type, created_at, created_by, last_updated_at, last_updated_by`

func scanCategory(row rowScanner) (domain.Category, error) {
	var m models.Category
	if err := row.Scan(&m.CategoryID, &m.Name, &m.Type, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy); err != nil {
		return domain.Category{}, err
	}
	return mapping.ToDomainCategory(m), nil
}

func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE category_id = $1;`
	c, err := scanCategory(r.db.QueryRow(ctx, query, categoryID))
	if err != nil {
		return nil, notFoundOr(err, fmt.Errorf("%w: %s", apperrors.ErrCategoryNotFound, categoryID),
			"failed to find category %s", categoryID)
	}
	return &c, nil
}

func (r *PgxCategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name, category_id;`)
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

func (r *PgxCategoryRepository) IsCategoryReferenced(ctx context.Context, categoryID string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = $1)
		    OR EXISTS (SELECT 1 FROM budget_categories WHERE category_id = $1);
	`
	var referenced bool
	if err := r.db.QueryRow(ctx, query, categoryID).Scan(&referenced); err != nil {
		return false, fmt.Errorf("failed to check references of category %s: %w", categoryID, err)
	}
	return referenced, nil
}

func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)
	query := `INSERT INTO categories (` + categoryColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7);`
	_, err := r.db.Exec(ctx, query, m.CategoryID, m.Name, m.Type, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category with ID %s already exists", apperrors.ErrDuplicate, m.CategoryID)
		}
		return fmt.Errorf("failed to save category %s: %w", m.CategoryID, err)
	}
	return nil
}

func (r *PgxCategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)
	query := `
		UPDATE categories
		SET name = $2, type = $3, last_updated_at = $4, last_updated_by = $5
		WHERE category_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, m.CategoryID, m.Name, m.Type, m.LastUpdatedAt, m.LastUpdatedBy)
	return exactlyOne(tag, err, fmt.Errorf("%w: %s", apperrors.ErrCategoryNotFound, m.CategoryID),
		"failed to update category %s", m.CategoryID)
}
