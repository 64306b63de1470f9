package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/open-builders/todo-backend/internal/common/logger"
	categorymodels "github.com/open-builders/todo-backend/internal/features/category/models"
	"github.com/open-builders/todo-backend/internal/features/project/models"
	"github.com/open-builders/todo-backend/internal/features/project/repository"
	"github.com/open-builders/todo-backend/internal/features/project/sharecode"
	taskmodels "github.com/open-builders/todo-backend/internal/features/task/models"
)

const DefaultMaxAttempts = 5

// JoinPublisher announces new members, e.g. to notify the owner.
type JoinPublisher interface {
	PublishJoin(ctx context.Context, projectID, userID int64) error
}

type SharingOptions struct {
	// MaxAttempts bounds code generation retries on collision.
	MaxAttempts   int
	AllowRotation bool
	// Events is optional.
	Events JoinPublisher
}

// SharingManager owns share codes and membership. It keeps no in-process
// state: races between instances are settled by the repository's unique
// constraints.
type SharingManager struct {
	projects      repository.ProjectRepository
	codes         sharecode.Generator
	content       ContentLoader
	events        JoinPublisher
	maxAttempts   int
	allowRotation bool
}

func NewSharingManager(projects repository.ProjectRepository, codes sharecode.Generator, content ContentLoader, opts SharingOptions) *SharingManager {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	return &SharingManager{
		projects:      projects,
		codes:         codes,
		content:       content,
		events:        opts.Events,
		maxAttempts:   opts.MaxAttempts,
		allowRotation: opts.AllowRotation,
	}
}

// GenerateShareCode returns the project's share code, assigning one on the
// first call. Only the owner may call it.
func (m *SharingManager) GenerateShareCode(ctx context.Context, projectID, userID int64) (string, error) {
	return m.assignCode(ctx, projectID, userID, false)
}

// RotateShareCode replaces the code so the old one stops working. Existing
// members keep access.
func (m *SharingManager) RotateShareCode(ctx context.Context, projectID, userID int64) (string, error) {
	if !m.allowRotation {
		return "", ErrRotationDisabled
	}
	return m.assignCode(ctx, projectID, userID, true)
}

func (m *SharingManager) assignCode(ctx context.Context, projectID, userID int64, rotate bool) (string, error) {
	project, err := m.ownedProject(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	if !rotate && project.ShareCode != nil {
		return *project.ShareCode, nil
	}
	replaced := project.ShareCode

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		code, err := m.codes.Generate()
		if err != nil {
			return "", fmt.Errorf("generate share code: %w", err)
		}
		code = sharecode.Normalize(code)
		if replaced != nil && code == *replaced {
			continue
		}

		err = m.projects.SetShareCode(ctx, project.ID, project.ShareCode, code)
		switch {
		case err == nil:
			logger.Info().
				Int64("project_id", project.ID).
				Bool("rotated", rotate).
				Int("attempt", attempt).
				Msg("Share code assigned")
			return code, nil

		case errors.Is(err, repository.ErrShareCodeTaken):
			logger.Debug().Int64("project_id", project.ID).Int("attempt", attempt).Msg("Share code collision")

		case errors.Is(err, repository.ErrShareCodeConflict):
			// A concurrent request stored a code first; it wins.
			project, err = m.projects.FindByID(ctx, project.ID)
			if err != nil {
				return "", err
			}
			if project == nil {
				return "", ErrProjectNotFound
			}
			if project.ShareCode != nil && !samePtr(project.ShareCode, replaced) {
				return *project.ShareCode, nil
			}

		default:
			return "", err
		}
	}

	logger.Error().Int64("project_id", project.ID).Int("attempts", m.maxAttempts).Msg("Share code space exhausted")
	return "", ErrCodeSpaceExhausted
}

// JoinProject redeems a share code for userID and returns the project with
// its content.
func (m *SharingManager) JoinProject(ctx context.Context, code string, userID int64) (*models.Summary, error) {
	code = sharecode.Normalize(code)
	if !sharecode.Valid(code) {
		return nil, ErrProjectNotFound
	}

	project, err := m.projects.FindByShareCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.OwnerID == userID {
		return nil, ErrAlreadyOwner
	}

	existing, err := m.projects.FindShare(ctx, project.ID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	if _, err := m.projects.InsertShare(ctx, project.ID, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrShareExists):
			return nil, ErrAlreadyMember
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	logger.Info().Int64("project_id", project.ID).Int64("user_id", userID).Msg("User joined project")
	if m.events != nil {
		// The membership is committed; a lost notification is not worth failing the join.
		if err := m.events.PublishJoin(ctx, project.ID, userID); err != nil {
			logger.Warn().Err(err).Int64("project_id", project.ID).Msg("Failed to publish join event")
		}
	}

	// The client refetches content when it opens the project.
	categories, tasks, err := m.content.LoadContent(ctx, project.ID)
	if err != nil {
		logger.Warn().Err(err).Int64("project_id", project.ID).Msg("Failed to load content of joined project")
		categories, tasks = []categorymodels.Category{}, []taskmodels.Task{}
	}
	return &models.Summary{
		Project:    project.ForRole(models.RoleMember),
		Role:       models.RoleMember,
		Categories: categories,
		Tasks:      tasks,
	}, nil
}

// HasAccess reports whether userID owns or has joined the project.
func (m *SharingManager) HasAccess(ctx context.Context, projectID, userID int64) (bool, error) {
	project, err := m.projects.FindByID(ctx, projectID)
	if err != nil {
		return false, err
	}
	if project == nil {
		return false, nil
	}
	_, err = m.roleOf(ctx, project, userID)
	if errors.Is(err, ErrNoAccess) {
		return false, nil
	}
	return err == nil, err
}

// Authorize loads the project and the caller's role in it. Unknown projects
// and projects the caller cannot see both yield ErrProjectNotFound so ids
// cannot be probed.
func (m *SharingManager) Authorize(ctx context.Context, projectID, userID int64) (*models.Project, models.Role, error) {
	project, err := m.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	if project == nil {
		return nil, "", ErrProjectNotFound
	}
	role, err := m.roleOf(ctx, project, userID)
	if err != nil {
		if errors.Is(err, ErrNoAccess) {
			return nil, "", ErrProjectNotFound
		}
		return nil, "", err
	}
	return project, role, nil
}

// CheckAccess is Authorize for callers that only need the verdict.
func (m *SharingManager) CheckAccess(ctx context.Context, projectID, userID int64) error {
	_, _, err := m.Authorize(ctx, projectID, userID)
	return err
}

func (m *SharingManager) ListMembers(ctx context.Context, projectID, userID int64) ([]models.Member, error) {
	if err := m.CheckAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}
	members, err := m.projects.ListMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []models.Member{}
	}
	return members, nil
}

// RemoveMember revokes memberID's access. Only the owner may do this.
func (m *SharingManager) RemoveMember(ctx context.Context, projectID, ownerID, memberID int64) error {
	project, err := m.ownedProject(ctx, projectID, ownerID)
	if err != nil {
		return err
	}
	if err := m.projects.DeleteShare(ctx, project.ID, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotMember
		}
		return err
	}
	logger.Info().Int64("project_id", project.ID).Int64("user_id", memberID).Msg("Member removed from project")
	return nil
}

func (m *SharingManager) ownedProject(ctx context.Context, projectID, userID int64) (*models.Project, error) {
	project, err := m.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.OwnerID != userID {
		return nil, ErrNotOwner
	}
	return project, nil
}

func (m *SharingManager) roleOf(ctx context.Context, project *models.Project, userID int64) (models.Role, error) {
	if project.OwnerID == userID {
		return models.RoleOwner, nil
	}
	share, err := m.projects.FindShare(ctx, project.ID, userID)
	if err != nil {
		return "", err
	}
	if share == nil {
		return "", ErrNoAccess
	}
	return models.RoleMember, nil
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
