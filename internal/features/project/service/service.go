package service

import (
	"context"
	"errors"
	"strings"

	"github.com/open-builders/todo-backend/internal/common/validation"
	"github.com/open-builders/todo-backend/internal/features/project/models"
	"github.com/open-builders/todo-backend/internal/features/project/repository"
)

type CreateInput struct {
	Name        string
	Description string
}

// UpdateInput changes only the non-nil fields.
type UpdateInput struct {
	Name        *string
	Description *string
}

type ProjectService interface {
	Create(ctx context.Context, ownerID int64, in CreateInput) (*models.Project, error)
	List(ctx context.Context, userID int64) ([]models.Membership, error)
	Get(ctx context.Context, projectID, userID int64) (*models.Summary, error)
	Update(ctx context.Context, projectID, userID int64, in UpdateInput) (*models.Project, error)
	Delete(ctx context.Context, projectID, userID int64) error
}

type projectService struct {
	projects repository.ProjectRepository
	sharing  *SharingManager
	content  ContentLoader
}

func NewProjectService(projects repository.ProjectRepository, sharing *SharingManager, content ContentLoader) ProjectService {
	return &projectService{projects: projects, sharing: sharing, content: content}
}

func (s *projectService) Create(ctx context.Context, ownerID int64, in CreateInput) (*models.Project, error) {
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateProjectName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, err
	}

	p := &models.Project{Name: name, Description: in.Description, OwnerID: ownerID}
	if err := s.projects.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return p, nil
}

func (s *projectService) List(ctx context.Context, userID int64) ([]models.Membership, error) {
	items, err := s.projects.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Project = items[i].Project.ForRole(items[i].Role)
	}
	if items == nil {
		items = []models.Membership{}
	}
	return items, nil
}

func (s *projectService) Get(ctx context.Context, projectID, userID int64) (*models.Summary, error) {
	project, role, err := s.sharing.Authorize(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	categories, tasks, err := s.content.LoadContent(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	return &models.Summary{
		Project:    project.ForRole(role),
		Role:       role,
		Categories: categories,
		Tasks:      tasks,
	}, nil
}

func (s *projectService) Update(ctx context.Context, projectID, userID int64, in UpdateInput) (*models.Project, error) {
	project, err := s.ownerOnly(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validation.ValidateProjectName(name); err != nil {
			return nil, err
		}
		project.Name = name
	}
	if in.Description != nil {
		if err := validation.ValidateDescription(*in.Description); err != nil {
			return nil, err
		}
		project.Description = *in.Description
	}

	if err := s.projects.Update(ctx, project); err != nil {
		switch {
		case errors.Is(err, repository.ErrNameTaken):
			return nil, ErrNameTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, projectID, userID int64) error {
	if _, err := s.ownerOnly(ctx, projectID, userID); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return err
	}
	return nil
}

// ownerOnly lets members learn they lack rights while strangers see 404.
func (s *projectService) ownerOnly(ctx context.Context, projectID, userID int64) (*models.Project, error) {
	project, role, err := s.sharing.Authorize(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleOwner {
		return nil, ErrNotOwner
	}
	return project, nil
}
