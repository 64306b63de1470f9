package models

import "time"

const DefaultColor = "#3390EC"

// Category groups tasks inside a project.
// @Description Task category
type Category struct {
	ID        int64     `json:"id" example:"1"`
	ProjectID int64     `json:"projectId" example:"1"`
	Name      string    `json:"name" example:"Work"`
	Color     string    `json:"color" example:"#3390EC"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
