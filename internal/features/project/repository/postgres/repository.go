package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/open-builders/todo-backend/internal/features/project/models"
	"github.com/open-builders/todo-backend/internal/features/project/repository"
	"github.com/open-builders/todo-backend/internal/platform/postgres"
)

const (
	projectColumns = `id, name, description, owner_id, share_code, created_at, updated_at`

	constraintShareCode   = "projects_share_code_key"
	constraintOwnerName   = "projects_owner_name_key"
	constraintShareUnique = "project_shares_project_user_key"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.ProjectRepository {
	return &postgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p    models.Project
		code sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &code, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if code.Valid {
		p.ShareCode = &code.String
	}
	return &p, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO projects (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, p.Name, p.Description, p.OwnerID).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err, constraintOwnerName):
			return repository.ErrNameTaken
		case postgres.IsForeignKeyViolation(err):
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to create project: %w", err)
	}
	p.ShareCode = nil
	return nil
}

func (r *postgresRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	return r.findOne(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
}

func (r *postgresRepository) FindByShareCode(ctx context.Context, code string) (*models.Project, error) {
	return r.findOne(ctx, `SELECT `+projectColumns+` FROM projects WHERE share_code = $1`, code)
}

func (r *postgresRepository) ListForUser(ctx context.Context, userID int64) ([]models.Membership, error) {
	query := `
		SELECT p.id, p.name, p.description, p.owner_id, p.share_code, p.created_at, p.updated_at,
			CASE WHEN p.owner_id = $1 THEN 'owner' ELSE 'member' END AS role
		FROM projects p
		LEFT JOIN project_shares s ON s.project_id = p.id AND s.user_id = $1
		WHERE p.owner_id = $1 OR s.user_id IS NOT NULL
		ORDER BY p.id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []models.Membership
	for rows.Next() {
		var (
			m    models.Membership
			code sql.NullString
			role string
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.OwnerID, &code, &m.CreatedAt, &m.UpdatedAt, &role); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if code.Valid {
			m.ShareCode = &code.String
		}
		m.Role = models.Role(role)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return out, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *models.Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, p.ID, p.Name, p.Description).Scan(&p.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return repository.ErrNotFound
		case postgres.IsUniqueViolation(err, constraintOwnerName):
			return repository.ErrNameTaken
		}
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireRow(result, repository.ErrNotFound)
}

// SetShareCode is a compare-and-set on share_code. projects_share_code_key
// arbitrates between different projects; the WHERE clause arbitrates
// between concurrent writers of the same project.
func (r *postgresRepository) SetShareCode(ctx context.Context, id int64, expected *string, code string) error {
	query := `
		UPDATE projects
		SET share_code = $2, updated_at = NOW()
		WHERE id = $1 AND share_code IS NOT DISTINCT FROM $3`

	var prev sql.NullString
	if expected != nil {
		prev = sql.NullString{String: *expected, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query, id, code, prev)
	if err != nil {
		if postgres.IsUniqueViolation(err, constraintShareCode) {
			return repository.ErrShareCodeTaken
		}
		return fmt.Errorf("failed to set share code: %w", err)
	}
	return requireRow(result, repository.ErrShareCodeConflict)
}

func (r *postgresRepository) InsertShare(ctx context.Context, projectID, userID int64) (*models.Share, error) {
	query := `
		INSERT INTO project_shares (project_id, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	s := &models.Share{ProjectID: projectID, UserID: userID}
	err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err, constraintShareUnique):
			return nil, repository.ErrShareExists
		case postgres.IsForeignKeyViolation(err):
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to insert project share: %w", err)
	}
	return s, nil
}

func (r *postgresRepository) FindShare(ctx context.Context, projectID, userID int64) (*models.Share, error) {
	query := `
		SELECT id, project_id, user_id, created_at
		FROM project_shares
		WHERE project_id = $1 AND user_id = $2`

	var s models.Share
	err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(&s.ID, &s.ProjectID, &s.UserID, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project share: %w", err)
	}
	return &s, nil
}

func (r *postgresRepository) ListShares(ctx context.Context, projectID int64) ([]models.Share, error) {
	query := `
		SELECT id, project_id, user_id, created_at
		FROM project_shares
		WHERE project_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project shares: %w", err)
	}
	defer rows.Close()

	var out []models.Share
	for rows.Next() {
		var s models.Share
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.UserID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project share: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *postgresRepository) ListMembers(ctx context.Context, projectID int64) ([]models.Member, error) {
	query := `
		SELECT u.id, u.username, u.first_name, u.last_name, s.created_at
		FROM project_shares s
		JOIN users u ON u.id = s.user_id
		WHERE s.project_id = $1
		ORDER BY s.id`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	defer rows.Close()

	var out []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.UserID, &m.Username, &m.FirstName, &m.LastName, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *postgresRepository) DeleteShare(ctx context.Context, projectID, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM project_shares WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project share: %w", err)
	}
	return requireRow(result, repository.ErrNotFound)
}

func requireRow(result sql.Result, none error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return none
	}
	return nil
}
