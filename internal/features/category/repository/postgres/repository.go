package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/open-builders/todo-backend/internal/features/category/models"
	"github.com/open-builders/todo-backend/internal/features/category/repository"
	"github.com/open-builders/todo-backend/internal/platform/postgres"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.CategoryRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (project_id, name, color)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, c.ProjectID, c.Name, c.Color).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	query := `
		SELECT id, project_id, name, color, created_at, updated_at
		FROM categories
		WHERE id = $1`

	var c models.Category
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.ProjectID, &c.Name, &c.Color, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (r *postgresRepository) ListByProject(ctx context.Context, projectID int64) ([]models.Category, error) {
	query := `
		SELECT id, project_id, name, color, created_at, updated_at
		FROM categories
		WHERE project_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Color, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepository) Update(ctx context.Context, c *models.Category) error {
	query := `
		UPDATE categories
		SET name = $2, color = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, c.ID, c.Name, c.Color).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
