package memory

import (
	"context"
	"sort"

	"github.com/open-builders/todo-backend/internal/features/task/models"
	"github.com/open-builders/todo-backend/internal/features/task/repository"
)

type taskRepository struct{ s *Store }

func copyTask(t *models.Task) *models.Task {
	c := *t
	if t.CategoryID != nil {
		id := *t.CategoryID
		c.CategoryID = &id
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}

func (r *taskRepository) Create(_ context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[t.ProjectID]; !ok {
		return repository.ErrNotFound
	}
	if t.CategoryID != nil {
		if _, ok := r.s.categories[*t.CategoryID]; !ok {
			return repository.ErrNotFound
		}
	}
	now := r.s.now()
	t.ID = r.s.nextID()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.tasks[t.ID] = copyTask(t)
	return nil
}

func (r *taskRepository) FindByID(_ context.Context, id int64) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tasks[id]; ok {
		return copyTask(t), nil
	}
	return nil, nil
}

func (r *taskRepository) List(_ context.Context, projectID int64, filter models.Filter) ([]models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Task
	for _, t := range r.s.tasks {
		if t.ProjectID == projectID && filter.Match(t) {
			out = append(out, *copyTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *taskRepository) Update(_ context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.tasks[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := copyTask(t)
	updated.ProjectID = cur.ProjectID
	updated.CreatedAt = cur.CreatedAt
	updated.UpdatedAt = r.s.now()
	r.s.tasks[t.ID] = updated
	t.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *taskRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.tasks, id)
	return nil
}
