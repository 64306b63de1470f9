package redis

import (
	"context"
	"errors"
	"time"

	"github.com/open-builders/todo-backend/internal/common/cache"
	"github.com/open-builders/todo-backend/internal/common/logger"
	"github.com/open-builders/todo-backend/internal/features/user/models"
	"github.com/open-builders/todo-backend/internal/features/user/repository"
)

// cachedUser mirrors models.User including the fields hidden from API output.
type cachedUser struct {
	models.User
	PasswordHash string `json:"passwordHash,omitempty"`
}

type cachedRepository struct {
	repository.UserRepository
	cache *cache.CacheService
	ttl   time.Duration
}

// NewCachedRepository serves telegram id lookups from Redis and falls back to
// next on a miss. Cache failures are logged and never fail the request.
func NewCachedRepository(next repository.UserRepository, c *cache.CacheService, ttl time.Duration) repository.UserRepository {
	return &cachedRepository{UserRepository: next, cache: c, ttl: ttl}
}

func telegramKey(telegramID string) string {
	return "user:tg:" + telegramID
}

func (r *cachedRepository) FindByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	var cu cachedUser
	err := r.cache.Get(ctx, telegramKey(telegramID), &cu)
	if err == nil {
		u := cu.User
		u.PasswordHash = cu.PasswordHash
		return &u, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.Warn().Err(err).Msg("User cache read failed")
	}

	u, err := r.UserRepository.FindByTelegramID(ctx, telegramID)
	if err != nil || u == nil {
		return u, err
	}
	r.store(ctx, telegramID, u)
	return u, nil
}

func (r *cachedRepository) UpsertByTelegramID(ctx context.Context, telegramID string, p models.Profile) (*models.User, error) {
	u, err := r.UserRepository.UpsertByTelegramID(ctx, telegramID, p)
	if err != nil {
		return nil, err
	}
	r.store(ctx, telegramID, u)
	return u, nil
}

func (r *cachedRepository) store(ctx context.Context, telegramID string, u *models.User) {
	if err := r.cache.Set(ctx, telegramKey(telegramID), cachedUser{User: *u, PasswordHash: u.PasswordHash}, r.ttl); err != nil {
		logger.Warn().Err(err).Msg("User cache write failed")
	}
}
