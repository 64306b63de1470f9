package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/open-builders/todo-backend/internal/common/telegramid"
	"github.com/open-builders/todo-backend/internal/features/user/models"
	"github.com/open-builders/todo-backend/internal/features/user/repository"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = repository.ErrEmailTaken
	ErrInvalidTelegramID = telegramid.ErrInvalid
)

type UserService interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	FindByTelegramID(ctx context.Context, telegramID string) (*models.User, error)
	UpsertTelegramUser(ctx context.Context, telegramID string, profile models.Profile) (*models.User, error)
	EnsureTelegramUser(ctx context.Context, telegramID string, profile models.Profile) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	RegisterWithEmail(ctx context.Context, email, passwordHash string, profile models.Profile) (*models.User, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// FindByTelegramID returns (nil, nil) for an unknown account.
func (s *userService) FindByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	id, err := telegramid.Normalize(telegramID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByTelegramID(ctx, id)
}

// UpsertTelegramUser always writes, refreshing the profile of an existing user.
func (s *userService) UpsertTelegramUser(ctx context.Context, telegramID string, profile models.Profile) (*models.User, error) {
	id, err := telegramid.Normalize(telegramID)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.UpsertByTelegramID(ctx, id, profile)
	if err != nil {
		return nil, fmt.Errorf("upsert telegram user: %w", err)
	}
	return user, nil
}

// EnsureTelegramUser is UpsertTelegramUser that skips the write when the
// stored profile already matches. It runs on every init-data authenticated
// request, so the read path goes through the cache.
func (s *userService) EnsureTelegramUser(ctx context.Context, telegramID string, profile models.Profile) (*models.User, error) {
	id, err := telegramid.Normalize(telegramID)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByTelegramID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user != nil && user.Profile() == profile {
		return user, nil
	}
	return s.UpsertTelegramUser(ctx, id, profile)
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.FindByEmail(ctx, NormalizeEmail(email))
}

func (s *userService) RegisterWithEmail(ctx context.Context, email, passwordHash string, profile models.Profile) (*models.User, error) {
	user, err := s.repo.CreateWithEmail(ctx, NormalizeEmail(email), passwordHash, profile)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
