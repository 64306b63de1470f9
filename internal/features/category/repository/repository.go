package repository

import (
	"context"
	"errors"

	"github.com/open-builders/todo-backend/internal/features/category/models"
)

var ErrNotFound = errors.New("category not found")

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	// FindByID returns (nil, nil) when absent.
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	ListByProject(ctx context.Context, projectID int64) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id int64) error
}
