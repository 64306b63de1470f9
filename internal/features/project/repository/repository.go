package repository

import (
	"context"
	"errors"

	"github.com/open-builders/todo-backend/internal/features/project/models"
)

var (
	ErrNotFound = errors.New("project not found")
	// ErrNameTaken means the owner already has a project with that name.
	ErrNameTaken = errors.New("project name already used")
	// ErrShareCodeTaken means another project holds the code.
	ErrShareCodeTaken = errors.New("share code belongs to another project")
	// ErrShareCodeConflict means the project's code changed since it was read.
	ErrShareCodeConflict = errors.New("share code was changed concurrently")
	// ErrShareExists means the user is already a member.
	ErrShareExists = errors.New("project share already exists")
)

// ProjectRepository persists projects and their shares. Find methods return
// (nil, nil) when no row matches. Uniqueness of share codes and of
// (project, user) shares is enforced here, not by callers.
type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	FindByID(ctx context.Context, id int64) (*models.Project, error)
	FindByShareCode(ctx context.Context, code string) (*models.Project, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Membership, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id int64) error

	// SetShareCode stores code only if the current code equals expected
	// (nil meaning unset). It fails with ErrShareCodeTaken on a global
	// collision and ErrShareCodeConflict when the precondition fails.
	SetShareCode(ctx context.Context, id int64, expected *string, code string) error

	InsertShare(ctx context.Context, projectID, userID int64) (*models.Share, error)
	FindShare(ctx context.Context, projectID, userID int64) (*models.Share, error)
	ListShares(ctx context.Context, projectID int64) ([]models.Share, error)
	ListMembers(ctx context.Context, projectID int64) ([]models.Member, error)
	DeleteShare(ctx context.Context, projectID, userID int64) error
}
