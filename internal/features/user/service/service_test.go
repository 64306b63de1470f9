package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-builders/todo-backend/internal/common/telegramid"
	"github.com/open-builders/todo-backend/internal/features/user/models"
	"github.com/open-builders/todo-backend/internal/features/user/repository"
	"github.com/open-builders/todo-backend/internal/platform/memory"
)

// countingRepository counts upserts reaching storage.
type countingRepository struct {
	repository.UserRepository
	mu      sync.Mutex
	upserts int
}

func (r *countingRepository) UpsertByTelegramID(ctx context.Context, telegramID string, p models.Profile) (*models.User, error) {
	r.mu.Lock()
	r.upserts++
	r.mu.Unlock()
	return r.UserRepository.UpsertByTelegramID(ctx, telegramID, p)
}

func TestUpsertTelegramUser_KeepsIdentity(t *testing.T) {
	svc := NewUserService(memory.New().Users())
	ctx := context.Background()

	first, err := svc.UpsertTelegramUser(ctx, "42", models.Profile{Username: "alice"})
	require.NoError(t, err)

	second, err := svc.UpsertTelegramUser(ctx, "42", models.Profile{Username: "alice2", FirstName: "Alice"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, *first.TelegramID, *second.TelegramID)
	assert.Equal(t, "alice2", second.Username)
	assert.Equal(t, "Alice", second.FirstName)
}

func TestUpsertTelegramUser_NormalizesID(t *testing.T) {
	svc := NewUserService(memory.New().Users())
	ctx := context.Background()

	a, err := svc.UpsertTelegramUser(ctx, "0042", models.Profile{})
	require.NoError(t, err)
	b, err := svc.UpsertTelegramUser(ctx, " 42 ", models.Profile{})
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "42", *b.TelegramID)

	_, err = svc.UpsertTelegramUser(ctx, "-1", models.Profile{})
	assert.ErrorIs(t, err, telegramid.ErrInvalid)
}

func TestUpsertTelegramUser_LargeID(t *testing.T) {
	svc := NewUserService(memory.New().Users())

	u, err := svc.UpsertTelegramUser(context.Background(), "9007199254740993", models.Profile{})
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", *u.TelegramID)

	found, err := svc.FindByTelegramID(context.Background(), "9007199254740993")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)

	other, err := svc.FindByTelegramID(context.Background(), "9007199254740992")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestEnsureTelegramUser_SkipsUnchangedProfile(t *testing.T) {
	repo := &countingRepository{UserRepository: memory.New().Users()}
	svc := NewUserService(repo)
	ctx := context.Background()
	profile := models.Profile{Username: "alice"}

	_, err := svc.EnsureTelegramUser(ctx, "42", profile)
	require.NoError(t, err)
	_, err = svc.EnsureTelegramUser(ctx, "42", profile)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.upserts)

	u, err := svc.EnsureTelegramUser(ctx, "42", models.Profile{Username: "alice2"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.upserts)
	assert.Equal(t, "alice2", u.Username)
}

func TestConcurrentFirstLogin(t *testing.T) {
	svc := NewUserService(memory.New().Users())
	ctx := context.Background()

	const n = 20
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := svc.EnsureTelegramUser(ctx, "42", models.Profile{Username: "alice"})
			if assert.NoError(t, err) {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := NewUserService(memory.New().Users())

	_, err := svc.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRegisterWithEmail(t *testing.T) {
	svc := NewUserService(memory.New().Users())
	ctx := context.Background()

	u, err := svc.RegisterWithEmail(ctx, "  Alice@Example.COM ", "hash", models.Profile{})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", *u.Email)

	_, err = svc.RegisterWithEmail(ctx, "alice@example.com", "hash", models.Profile{})
	assert.ErrorIs(t, err, ErrEmailTaken)

	found, err := svc.FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)
}
