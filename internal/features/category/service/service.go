package service

import (
	"context"
	"errors"
	"strings"

	"github.com/open-builders/todo-backend/internal/common/validation"
	"github.com/open-builders/todo-backend/internal/features/category/models"
	"github.com/open-builders/todo-backend/internal/features/category/repository"
)

var ErrCategoryNotFound = errors.New("category not found")

// AccessChecker fails unless the user may work inside the project.
type AccessChecker interface {
	CheckAccess(ctx context.Context, projectID, userID int64) error
}

type CreateInput struct {
	Name  string
	Color string
}

type UpdateInput struct {
	Name  *string
	Color *string
}

type CategoryService interface {
	Create(ctx context.Context, projectID, userID int64, in CreateInput) (*models.Category, error)
	List(ctx context.Context, projectID, userID int64) ([]models.Category, error)
	Update(ctx context.Context, projectID, categoryID, userID int64, in UpdateInput) (*models.Category, error)
	Delete(ctx context.Context, projectID, categoryID, userID int64) error
}

type categoryService struct {
	repo   repository.CategoryRepository
	access AccessChecker
}

func NewCategoryService(repo repository.CategoryRepository, access AccessChecker) CategoryService {
	return &categoryService{repo: repo, access: access}
}

func (s *categoryService) Create(ctx context.Context, projectID, userID int64, in CreateInput) (*models.Category, error) {
	if err := s.access.CheckAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateCategoryName(name); err != nil {
		return nil, err
	}
	color := in.Color
	if color == "" {
		color = models.DefaultColor
	}
	if err := validation.ValidateColor(color); err != nil {
		return nil, err
	}

	c := &models.Category{ProjectID: projectID, Name: name, Color: strings.ToUpper(color)}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *categoryService) List(ctx context.Context, projectID, userID int64) ([]models.Category, error) {
	if err := s.access.CheckAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}
	categories, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *categoryService) Update(ctx context.Context, projectID, categoryID, userID int64, in UpdateInput) (*models.Category, error) {
	c, err := s.load(ctx, projectID, categoryID, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validation.ValidateCategoryName(name); err != nil {
			return nil, err
		}
		c.Name = name
	}
	if in.Color != nil {
		if err := validation.ValidateColor(*in.Color); err != nil {
			return nil, err
		}
		c.Color = strings.ToUpper(*in.Color)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, projectID, categoryID, userID int64) error {
	if _, err := s.load(ctx, projectID, categoryID, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *categoryService) load(ctx context.Context, projectID, categoryID, userID int64) (*models.Category, error) {
	if err := s.access.CheckAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.ProjectID != projectID {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}
