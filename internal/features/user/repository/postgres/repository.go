package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/open-builders/todo-backend/internal/features/user/models"
	"github.com/open-builders/todo-backend/internal/features/user/repository"
	"github.com/open-builders/todo-backend/internal/platform/postgres"
)

const userColumns = `id, telegram_id, email, password_hash, username, first_name, last_name, created_at, updated_at`

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.UserRepository {
	return &postgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u            models.User
		telegramID   sql.NullString
		email        sql.NullString
		passwordHash sql.NullString
	)
	if err := row.Scan(&u.ID, &telegramID, &email, &passwordHash,
		&u.Username, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if telegramID.Valid {
		u.TelegramID = &telegramID.String
	}
	if email.Valid {
		u.Email = &email.String
	}
	u.PasswordHash = passwordHash.String
	return &u, nil
}

func (r *postgresRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresRepository) FindByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// UpsertByTelegramID relies on users_telegram_id_key so concurrent first
// logins of the same account converge on one row.
func (r *postgresRepository) UpsertByTelegramID(ctx context.Context, telegramID string, p models.Profile) (*models.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			updated_at = NOW()
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, telegramID, p.Username, p.FirstName, p.LastName))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) CreateWithEmail(ctx context.Context, email, passwordHash string, p models.Profile) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, username, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email, passwordHash, p.Username, p.FirstName, p.LastName))
	if err != nil {
		if postgres.IsUniqueViolation(err, "users_email_key") {
			return nil, repository.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}
