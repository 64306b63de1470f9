package repository

import (
	"context"
	"errors"

	"github.com/open-builders/todo-backend/internal/features/task/models"
)

var ErrNotFound = errors.New("task not found")

type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	// FindByID returns (nil, nil) when absent.
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	// List returns the project's tasks newest first.
	List(ctx context.Context, projectID int64, filter models.Filter) ([]models.Task, error)
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id int64) error
}
