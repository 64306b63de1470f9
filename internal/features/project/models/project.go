package models

import (
	"time"

	categorymodels "github.com/open-builders/todo-backend/internal/features/category/models"
	taskmodels "github.com/open-builders/todo-backend/internal/features/task/models"
)

// Project is a task list exclusively owned by one user.
// @Description Project
type Project struct {
	ID          int64  `json:"id" example:"1"`
	Name        string `json:"name" example:"Groceries"`
	Description string `json:"description" example:""`
	OwnerID     int64  `json:"ownerId" example:"1"`
	// ShareCode is set once on the first share request and never changes
	// unless rotation is enabled.
	ShareCode *string   `json:"shareCode,omitempty" example:"AB12CD"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Share grants a non-owner access to a project.
type Share struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"projectId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Membership is a project as seen by one user.
// @Description Project with the caller's role
type Membership struct {
	Project
	Role Role `json:"role" example:"owner" enums:"owner,member"`
}

// Summary is a project with its content, returned on open and join.
// @Description Project with categories and tasks
type Summary struct {
	Project
	Role       Role                      `json:"role" example:"member" enums:"owner,member"`
	Categories []categorymodels.Category `json:"categories"`
	Tasks      []taskmodels.Task         `json:"tasks"`
}

// Member is a user that joined a project through its share code.
// @Description Project member
type Member struct {
	UserID    int64     `json:"userId" example:"2"`
	Username  string    `json:"username" example:"bob"`
	FirstName string    `json:"firstName" example:"Bob"`
	LastName  string    `json:"lastName" example:""`
	JoinedAt  time.Time `json:"joinedAt"`
}

// ForRole hides the share code from users who cannot manage sharing.
func (p Project) ForRole(role Role) Project {
	if role != RoleOwner {
		p.ShareCode = nil
	}
	return p
}
