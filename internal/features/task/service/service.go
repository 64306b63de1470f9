package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/open-builders/todo-backend/internal/common/validation"
	categorymodels "github.com/open-builders/todo-backend/internal/features/category/models"
	"github.com/open-builders/todo-backend/internal/features/task/models"
	"github.com/open-builders/todo-backend/internal/features/task/repository"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrCategoryMismatch = errors.New("category does not belong to this project")
)

type AccessChecker interface {
	CheckAccess(ctx context.Context, projectID, userID int64) error
}

type CategoryFinder interface {
	FindByID(ctx context.Context, id int64) (*categorymodels.Category, error)
}

type CreateInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
	CategoryID  *int64
}

// UpdateInput changes the non-nil fields. ClearDueDate and ClearCategory
// unset the corresponding optional field.
type UpdateInput struct {
	Title         *string
	Description   *string
	Priority      *string
	DueDate       *time.Time
	ClearDueDate  bool
	CategoryID    *int64
	ClearCategory bool
	Completed     *bool
}

type TaskService interface {
	Create(ctx context.Context, projectID, userID int64, in CreateInput) (*models.Task, error)
	List(ctx context.Context, projectID, userID int64, filter models.Filter) ([]models.Task, error)
	Get(ctx context.Context, projectID, taskID, userID int64) (*models.Task, error)
	Update(ctx context.Context, projectID, taskID, userID int64, in UpdateInput) (*models.Task, error)
	Delete(ctx context.Context, projectID, taskID, userID int64) error
}

type taskService struct {
	repo       repository.TaskRepository
	categories CategoryFinder
	access     AccessChecker
}

func NewTaskService(repo repository.TaskRepository, categories CategoryFinder, access AccessChecker) TaskService {
	return &taskService{repo: repo, categories: categories, access: access}
}

func (s *taskService) Create(ctx context.Context, projectID, userID int64, in CreateInput) (*models.Task, error) {
	if err := s.access.CheckAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if err := validation.ValidateTaskTitle(title); err != nil {
		return nil, err
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, err
	}
	priority, err := models.ParsePriority(in.Priority)
	if err != nil {
		return nil, &validation.FieldError{Field: "priority", Reason: "must be LOW, MEDIUM or HIGH"}
	}
	if err := validation.ValidateDueDate(in.DueDate); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, projectID, in.CategoryID); err != nil {
		return nil, err
	}

	t := &models.Task{
		ProjectID:   projectID,
		CategoryID:  in.CategoryID,
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		DueDate:     in.DueDate,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskService) List(ctx context.Context, projectID, userID int64, filter models.Filter) ([]models.Task, error) {
	if err := s.access.CheckAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.List(ctx, projectID, filter)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *taskService) Get(ctx context.Context, projectID, taskID, userID int64) (*models.Task, error) {
	return s.load(ctx, projectID, taskID, userID)
}

func (s *taskService) Update(ctx context.Context, projectID, taskID, userID int64, in UpdateInput) (*models.Task, error) {
	t, err := s.load(ctx, projectID, taskID, userID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validation.ValidateTaskTitle(title); err != nil {
			return nil, err
		}
		t.Title = title
	}
	if in.Description != nil {
		if err := validation.ValidateDescription(*in.Description); err != nil {
			return nil, err
		}
		t.Description = *in.Description
	}
	if in.Priority != nil {
		p, err := models.ParsePriority(*in.Priority)
		if err != nil {
			return nil, &validation.FieldError{Field: "priority", Reason: "must be LOW, MEDIUM or HIGH"}
		}
		t.Priority = p
	}
	switch {
	case in.ClearDueDate:
		t.DueDate = nil
	case in.DueDate != nil:
		if err := validation.ValidateDueDate(in.DueDate); err != nil {
			return nil, err
		}
		t.DueDate = in.DueDate
	}
	switch {
	case in.ClearCategory:
		t.CategoryID = nil
	case in.CategoryID != nil:
		if err := s.checkCategory(ctx, projectID, in.CategoryID); err != nil {
			return nil, err
		}
		t.CategoryID = in.CategoryID
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}

	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *taskService) Delete(ctx context.Context, projectID, taskID, userID int64) error {
	if _, err := s.load(ctx, projectID, taskID, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (s *taskService) load(ctx context.Context, projectID, taskID, userID int64) (*models.Task, error) {
	if err := s.access.CheckAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}
	t, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.ProjectID != projectID {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

func (s *taskService) checkCategory(ctx context.Context, projectID int64, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	c, err := s.categories.FindByID(ctx, *categoryID)
	if err != nil {
		return err
	}
	if c == nil || c.ProjectID != projectID {
		return ErrCategoryMismatch
	}
	return nil
}
