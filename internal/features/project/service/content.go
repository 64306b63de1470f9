package service

import (
	"context"
	"fmt"

	categorymodels "github.com/open-builders/todo-backend/internal/features/category/models"
	taskmodels "github.com/open-builders/todo-backend/internal/features/task/models"
)

// ContentLoader fetches what a project summary shows next to the project.
type ContentLoader interface {
	LoadContent(ctx context.Context, projectID int64) ([]categorymodels.Category, []taskmodels.Task, error)
}

type CategoryLister interface {
	ListByProject(ctx context.Context, projectID int64) ([]categorymodels.Category, error)
}

type TaskLister interface {
	List(ctx context.Context, projectID int64, filter taskmodels.Filter) ([]taskmodels.Task, error)
}

type contentLoader struct {
	categories CategoryLister
	tasks      TaskLister
}

func NewContentLoader(categories CategoryLister, tasks TaskLister) ContentLoader {
	return &contentLoader{categories: categories, tasks: tasks}
}

func (l *contentLoader) LoadContent(ctx context.Context, projectID int64) ([]categorymodels.Category, []taskmodels.Task, error) {
	categories, err := l.categories.ListByProject(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("list categories: %w", err)
	}
	tasks, err := l.tasks.List(ctx, projectID, taskmodels.Filter{})
	if err != nil {
		return nil, nil, fmt.Errorf("list tasks: %w", err)
	}
	if categories == nil {
		categories = []categorymodels.Category{}
	}
	if tasks == nil {
		tasks = []taskmodels.Task{}
	}
	return categories, tasks, nil
}
