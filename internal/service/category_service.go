package service

import (
	"context"
	"errors"

	"hushwall/internal/authz"
	"hushwall/internal/identity"
	"hushwall/internal/models"
	"hushwall/internal/repository"
	"hushwall/internal/validation"

	"gorm.io/gorm"
)

type CategoryService struct {
	categories repository.CategoryRepository
	guard      *authz.Engine
}

func NewCategoryService(categories repository.CategoryRepository, guard *authz.Engine) *CategoryService {
	return &CategoryService{categories: categories, guard: guard}
}

type CategoryInput struct {
	Name string `json:"name"`
}

// List returns all categories. Readable by anyone.
func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, categoryID uint) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", categoryID)
		}
		return nil, err
	}
	return category, nil
}

// Create adds a category. Names are stored capitalized so the taxonomy
// stays uniform regardless of how admins type them.
func (s *CategoryService) Create(ctx context.Context, id identity.Identity, in CategoryInput) (*models.Category, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceCategory, authz.ActionCreate, authz.Object{}); err != nil {
		return nil, err
	}

	fields := validation.Errors{}
	fields.CheckRequired("name", in.Name)
	if !fields.Empty() {
		return nil, models.NewFieldValidationError(fields)
	}

	category := &models.Category{Name: models.Capitalize(in.Name)}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id identity.Identity, categoryID uint, in CategoryInput) (*models.Category, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceCategory, authz.ActionUpdate, authz.Object{}); err != nil {
		return nil, err
	}

	category, err := s.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	fields := validation.Errors{}
	fields.CheckRequired("name", in.Name)
	if !fields.Empty() {
		return nil, models.NewFieldValidationError(fields)
	}

	category.Name = models.Capitalize(in.Name)
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id identity.Identity, categoryID uint) error {
	if err := s.guard.Authorize(ctx, id, authz.ResourceCategory, authz.ActionDelete, authz.Object{}); err != nil {
		return err
	}
	if _, err := s.Get(ctx, categoryID); err != nil {
		return err
	}
	return s.categories.Delete(ctx, categoryID)
}
