package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SscSPs/money_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker/internal/core/ports/services"
	"github.com/SscSPs/money_tracker/internal/dto"
)

type categoryService struct {
	BaseService
	uow portsrepo.UnitOfWork
}

// NewCategoryService creates the category service.
func NewCategoryService(uow portsrepo.UnitOfWork) portssvc.CategorySvcFacade {
	return &categoryService{BaseService: newBaseService(), uow: uow}
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, userID string) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("category name is required")
	}
	if !req.Type.Valid() {
		return nil, validationError("unknown category type %q", req.Type)
	}

	category := domain.Category{
		CategoryID:  uuid.NewString(),
		Name:        name,
		Type:        req.Type,
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}
	if err := s.uow.Categories().SaveCategory(ctx, category); err != nil {
		s.LogError(ctx, err, "Failed to save category", slog.String("name", name))
		return nil, err
	}
	s.GetLogger(ctx).Info("Category created", slog.String("category_id", category.CategoryID))
	return &category, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.uow.Categories().FindCategoryByID(ctx, categoryID)
}

func (s *categoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.uow.Categories().ListCategories(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list categories")
		return nil, err
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, categoryID string, req dto.UpdateCategoryRequest, userID string) (*domain.Category, error) {
	var category *domain.Category
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		var err error
		category, err = tx.Categories().FindCategoryByID(ctx, categoryID)
		if err != nil {
			return err
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return validationError("category name is required")
			}
			category.Name = name
		}
		if req.Type != nil && *req.Type != category.Type {
			if !req.Type.Valid() {
				return validationError("unknown category type %q", *req.Type)
			}
			referenced, err := tx.Categories().IsCategoryReferenced(ctx, categoryID)
			if err != nil {
				return err
			}
			if referenced {
				return validationError("category type cannot change once transactions or budgets use it")
			}
			category.Type = *req.Type
		}
		category.Touch(userID, s.Now())
		return tx.Categories().UpdateCategory(ctx, *category)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update category", slog.String("category_id", categoryID))
		return nil, err
	}
	return category, nil
}
