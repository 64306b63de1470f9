package memory

import (
	"context"

	"github.com/open-builders/todo-backend/internal/features/user/models"
	"github.com/open-builders/todo-backend/internal/features/user/repository"
)

type userRepository struct{ s *Store }

func copyUser(u *models.User) *models.User {
	c := *u
	c.TelegramID = cloneStr(u.TelegramID)
	c.Email = cloneStr(u.Email)
	return &c
}

func (r *userRepository) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (r *userRepository) findBy(match func(*models.User) bool) *models.User {
	for _, u := range r.s.users {
		if match(u) {
			return u
		}
	}
	return nil
}

func (r *userRepository) FindByTelegramID(_ context.Context, telegramID string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u := r.findBy(func(u *models.User) bool { return u.TelegramID != nil && *u.TelegramID == telegramID }); u != nil {
		return copyUser(u), nil
	}
	return nil, nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u := r.findBy(func(u *models.User) bool { return u.Email != nil && *u.Email == email }); u != nil {
		return copyUser(u), nil
	}
	return nil, nil
}

func (r *userRepository) UpsertByTelegramID(_ context.Context, telegramID string, p models.Profile) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	u := r.findBy(func(u *models.User) bool { return u.TelegramID != nil && *u.TelegramID == telegramID })
	if u == nil {
		u = &models.User{ID: r.s.nextID(), TelegramID: strPtr(telegramID), CreatedAt: now}
		r.s.users[u.ID] = u
	}
	u.Username, u.FirstName, u.LastName = p.Username, p.FirstName, p.LastName
	u.UpdatedAt = now
	return copyUser(u), nil
}

func (r *userRepository) CreateWithEmail(_ context.Context, email, passwordHash string, p models.Profile) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.findBy(func(u *models.User) bool { return u.Email != nil && *u.Email == email }) != nil {
		return nil, repository.ErrEmailTaken
	}
	now := r.s.now()
	u := &models.User{
		ID:           r.s.nextID(),
		Email:        strPtr(email),
		PasswordHash: passwordHash,
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users[u.ID] = u
	return copyUser(u), nil
}
