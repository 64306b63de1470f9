package memory

import (
	"context"
	"sort"

	"github.com/open-builders/todo-backend/internal/features/project/models"
	"github.com/open-builders/todo-backend/internal/features/project/repository"
)

type projectRepository struct{ s *Store }

func copyProject(p *models.Project) *models.Project {
	c := *p
	c.ShareCode = cloneStr(p.ShareCode)
	return &c
}

func (r *projectRepository) nameTaken(ownerID int64, name string, except int64) bool {
	for _, p := range r.s.projects {
		if p.ID != except && p.OwnerID == ownerID && p.Name == name {
			return true
		}
	}
	return false
}

func (r *projectRepository) Create(_ context.Context, p *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[p.OwnerID]; !ok {
		return repository.ErrNotFound
	}
	if r.nameTaken(p.OwnerID, p.Name, 0) {
		return repository.ErrNameTaken
	}
	now := r.s.now()
	p.ID = r.s.nextID()
	p.ShareCode = nil
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.projects[p.ID] = copyProject(p)
	return nil
}

func (r *projectRepository) FindByID(_ context.Context, id int64) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.projects[id]; ok {
		return copyProject(p), nil
	}
	return nil, nil
}

func (r *projectRepository) FindByShareCode(_ context.Context, code string) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if id, ok := r.s.shareCodes[code]; ok {
		return copyProject(r.s.projects[id]), nil
	}
	return nil, nil
}

func (r *projectRepository) ListForUser(_ context.Context, userID int64) ([]models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Membership
	for _, p := range r.s.projects {
		if p.OwnerID == userID {
			out = append(out, models.Membership{Project: *copyProject(p), Role: models.RoleOwner})
		}
	}
	for _, sh := range r.s.shares {
		if sh.UserID == userID {
			if p, ok := r.s.projects[sh.ProjectID]; ok {
				out = append(out, models.Membership{Project: *copyProject(p), Role: models.RoleMember})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *projectRepository) Update(_ context.Context, p *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.projects[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.nameTaken(cur.OwnerID, p.Name, p.ID) {
		return repository.ErrNameTaken
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.UpdatedAt = r.s.now()
	p.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r *projectRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.ShareCode != nil {
		delete(r.s.shareCodes, *p.ShareCode)
	}
	delete(r.s.projects, id)
	for sid, sh := range r.s.shares {
		if sh.ProjectID == id {
			delete(r.s.shares, sid)
		}
	}
	for cid, c := range r.s.categories {
		if c.ProjectID == id {
			delete(r.s.categories, cid)
		}
	}
	for tid, t := range r.s.tasks {
		if t.ProjectID == id {
			delete(r.s.tasks, tid)
		}
	}
	return nil
}

func (r *projectRepository) SetShareCode(_ context.Context, id int64, expected *string, code string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[id]
	if !ok || !samePtr(p.ShareCode, expected) {
		return repository.ErrShareCodeConflict
	}
	if owner, taken := r.s.shareCodes[code]; taken && owner != id {
		return repository.ErrShareCodeTaken
	}
	if p.ShareCode != nil {
		delete(r.s.shareCodes, *p.ShareCode)
	}
	r.s.shareCodes[code] = id
	p.ShareCode = strPtr(code)
	p.UpdatedAt = r.s.now()
	return nil
}

func (r *projectRepository) findShare(projectID, userID int64) *models.Share {
	for _, sh := range r.s.shares {
		if sh.ProjectID == projectID && sh.UserID == userID {
			return sh
		}
	}
	return nil
}

func (r *projectRepository) InsertShare(_ context.Context, projectID, userID int64) (*models.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[projectID]; !ok {
		return nil, repository.ErrNotFound
	}
	if _, ok := r.s.users[userID]; !ok {
		return nil, repository.ErrNotFound
	}
	if r.findShare(projectID, userID) != nil {
		return nil, repository.ErrShareExists
	}
	sh := &models.Share{ID: r.s.nextID(), ProjectID: projectID, UserID: userID, CreatedAt: r.s.now()}
	r.s.shares[sh.ID] = sh
	c := *sh
	return &c, nil
}

func (r *projectRepository) FindShare(_ context.Context, projectID, userID int64) (*models.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sh := r.findShare(projectID, userID); sh != nil {
		c := *sh
		return &c, nil
	}
	return nil, nil
}

func (r *projectRepository) sharesOf(projectID int64) []models.Share {
	var out []models.Share
	for _, sh := range r.s.shares {
		if sh.ProjectID == projectID {
			out = append(out, *sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *projectRepository) ListShares(_ context.Context, projectID int64) ([]models.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sharesOf(projectID), nil
}

func (r *projectRepository) ListMembers(_ context.Context, projectID int64) ([]models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Member
	for _, sh := range r.sharesOf(projectID) {
		u, ok := r.s.users[sh.UserID]
		if !ok {
			continue
		}
		out = append(out, models.Member{
			UserID:    u.ID,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			JoinedAt:  sh.CreatedAt,
		})
	}
	return out, nil
}

func (r *projectRepository) DeleteShare(_ context.Context, projectID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sh := r.findShare(projectID, userID)
	if sh == nil {
		return repository.ErrNotFound
	}
	delete(r.s.shares, sh.ID)
	return nil
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
