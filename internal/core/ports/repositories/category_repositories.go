package repositories

import (
	"context"

	"github.com/SscSPs/money_tracker/internal/core/domain"
)

// CategoryReader defines read operations for categories
type CategoryReader interface {
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// IsCategoryReferenced reports whether any transaction or allocation uses the category.
	IsCategoryReferenced(ctx context.Context, categoryID string) (bool, error)
}

// CategoryWriter defines write operations for categories
type CategoryWriter interface {
	SaveCategory(ctx context.Context, category domain.Category) error
	UpdateCategory(ctx context.Context, category domain.Category) error
}

// CategoryRepositoryFacade combines all category-related repository interfaces
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
