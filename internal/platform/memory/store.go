// Package memory is an in-process storage backend for local development and
// tests. It enforces the same uniqueness and cascade rules as the Postgres
// schema so services behave identically on both.
package memory

import (
	"sync"
	"time"

	categorymodels "github.com/open-builders/todo-backend/internal/features/category/models"
	categoryrepo "github.com/open-builders/todo-backend/internal/features/category/repository"
	projectmodels "github.com/open-builders/todo-backend/internal/features/project/models"
	projectrepo "github.com/open-builders/todo-backend/internal/features/project/repository"
	taskmodels "github.com/open-builders/todo-backend/internal/features/task/models"
	taskrepo "github.com/open-builders/todo-backend/internal/features/task/repository"
	usermodels "github.com/open-builders/todo-backend/internal/features/user/models"
	userrepo "github.com/open-builders/todo-backend/internal/features/user/repository"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	seq int64

	users      map[int64]*usermodels.User
	projects   map[int64]*projectmodels.Project
	shares     map[int64]*projectmodels.Share
	categories map[int64]*categorymodels.Category
	tasks      map[int64]*taskmodels.Task

	// shareCodes is the unique index over projects.share_code.
	shareCodes map[string]int64
}

func New() *Store {
	return &Store{
		now:        time.Now,
		users:      make(map[int64]*usermodels.User),
		projects:   make(map[int64]*projectmodels.Project),
		shares:     make(map[int64]*projectmodels.Share),
		categories: make(map[int64]*categorymodels.Category),
		tasks:      make(map[int64]*taskmodels.Task),
		shareCodes: make(map[string]int64),
	}
}

// nextID hands out ids from a single sequence; callers hold mu.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Users() userrepo.UserRepository { return &userRepository{s} }
func (s *Store) Projects() projectrepo.ProjectRepository { return &projectRepository{s} }
func (s *Store) Categories() categoryrepo.CategoryRepository { return &categoryRepository{s} }
func (s *Store) Tasks() taskrepo.TaskRepository { return &taskRepository{s} }

func strPtr(s string) *string { return &s }

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	return strPtr(*p)
}
