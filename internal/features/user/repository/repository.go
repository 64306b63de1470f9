package repository

import (
	"context"
	"errors"

	"github.com/open-builders/todo-backend/internal/features/user/models"
)

var ErrEmailTaken = errors.New("email is already registered")

// UserRepository persists users. Find methods return (nil, nil) when no
// row matches.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByTelegramID(ctx context.Context, telegramID string) (*models.User, error)
	// UpsertByTelegramID creates the user or refreshes its profile fields.
	// It never changes id or telegram id of an existing row.
	UpsertByTelegramID(ctx context.Context, telegramID string, profile models.Profile) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CreateWithEmail(ctx context.Context, email, passwordHash string, profile models.Profile) (*models.User, error)
}
