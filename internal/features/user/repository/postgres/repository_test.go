package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-builders/todo-backend/internal/features/user/models"
	"github.com/open-builders/todo-backend/internal/features/user/repository"
)

var userCols = []string{"id", "telegram_id", "email", "password_hash", "username", "first_name", "last_name", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (repository.UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestFindByTelegramID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+telegram_id\s*=\s*\$1`).
		WithArgs("9007199254740993").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "9007199254740993", nil, nil, "alice", "Alice", "", now, now))

	u, err := repo.FindByTelegramID(context.Background(), "9007199254740993")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotNil(t, u.TelegramID)
	assert.Equal(t, "9007199254740993", *u.TelegramID)
	assert.Nil(t, u.Email)
	assert.Empty(t, u.PasswordHash)
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id`).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)

	u, err := repo.FindByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUpsertByTelegramID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+users.*ON\s+CONFLICT\s+\(telegram_id\)\s+DO\s+UPDATE`).
		WithArgs("42", "alice2", "Alice", "").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "42", nil, nil, "alice2", "Alice", "", now, now))

	u, err := repo.UpsertByTelegramID(context.Background(), "42", models.Profile{Username: "alice2", FirstName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "alice2", u.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithEmail_Taken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users\s+\(email`).
		WithArgs("a@b.c", "hash", "", "", "").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := repo.CreateWithEmail(context.Background(), "a@b.c", "hash", models.Profile{})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestCreateWithEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT\s+INTO\s+users\s+\(email`).
		WithArgs("a@b.c", "hash", "", "", "").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(3, nil, "a@b.c", "hash", "", "", "", now, now))

	u, err := repo.CreateWithEmail(context.Background(), "a@b.c", "hash", models.Profile{})
	require.NoError(t, err)
	require.NotNil(t, u.Email)
	assert.Equal(t, "a@b.c", *u.Email)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.Nil(t, u.TelegramID)
}
