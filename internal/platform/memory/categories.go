package memory

import (
	"context"
	"sort"

	"github.com/open-builders/todo-backend/internal/features/category/models"
	"github.com/open-builders/todo-backend/internal/features/category/repository"
)

type categoryRepository struct{ s *Store }

func (r *categoryRepository) Create(_ context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[c.ProjectID]; !ok {
		return repository.ErrNotFound
	}
	now := r.s.now()
	c.ID = r.s.nextID()
	c.CreatedAt, c.UpdatedAt = now, now
	stored := *c
	r.s.categories[c.ID] = &stored
	return nil
}

func (r *categoryRepository) FindByID(_ context.Context, id int64) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *categoryRepository) ListByProject(_ context.Context, projectID int64) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Category
	for _, c := range r.s.categories {
		if c.ProjectID == projectID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *categoryRepository) Update(_ context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.categories[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Name, cur.Color = c.Name, c.Color
	cur.UpdatedAt = r.s.now()
	c.UpdatedAt = cur.UpdatedAt
	return nil
}

// Delete detaches the category's tasks, matching ON DELETE SET NULL.
func (r *categoryRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.categories, id)
	for _, t := range r.s.tasks {
		if t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = nil
		}
	}
	return nil
}
