package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/open-builders/todo-backend/internal/features/task/models"
	"github.com/open-builders/todo-backend/internal/features/task/repository"
	"github.com/open-builders/todo-backend/internal/platform/postgres"
)

const taskColumns = `id, project_id, category_id, title, description, priority, due_date, completed, created_at, updated_at`

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.TaskRepository {
	return &postgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t        models.Task
		category sql.NullInt64
		due      sql.NullTime
		priority string
	)
	err := row.Scan(&t.ID, &t.ProjectID, &category, &t.Title, &t.Description, &priority, &due, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if category.Valid {
		t.CategoryID = &category.Int64
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	t.Priority = models.Priority(priority)
	return &t, nil
}

func nullables(t *models.Task) (sql.NullInt64, sql.NullTime) {
	var (
		category sql.NullInt64
		due      sql.NullTime
	)
	if t.CategoryID != nil {
		category = sql.NullInt64{Int64: *t.CategoryID, Valid: true}
	}
	if t.DueDate != nil {
		due = sql.NullTime{Time: *t.DueDate, Valid: true}
	}
	return category, due
}

func (r *postgresRepository) Create(ctx context.Context, t *models.Task) error {
	query := `
		INSERT INTO tasks (project_id, category_id, title, description, priority, due_date, completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	category, due := nullables(t)
	err := r.db.QueryRowContext(ctx, query, t.ProjectID, category, t.Title, t.Description, string(t.Priority), due, t.Completed).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

func (r *postgresRepository) List(ctx context.Context, projectID int64, filter models.Filter) ([]models.Task, error) {
	where := []string{"project_id = $1"}
	args := []interface{}{projectID}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.CategoryID != nil {
		add("category_id = $%d", *filter.CategoryID)
	}
	if filter.Completed != nil {
		add("completed = $%d", *filter.Completed)
	}
	if filter.Priority != nil {
		add("priority = $%d", string(*filter.Priority))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *postgresRepository) Update(ctx context.Context, t *models.Task) error {
	query := `
		UPDATE tasks
		SET category_id = $2, title = $3, description = $4, priority = $5,
			due_date = $6, completed = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	category, due := nullables(t)
	err := r.db.QueryRowContext(ctx, query, t.ID, category, t.Title, t.Description, string(t.Priority), due, t.Completed).
		Scan(&t.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return repository.ErrNotFound
		case postgres.IsForeignKeyViolation(err):
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
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
