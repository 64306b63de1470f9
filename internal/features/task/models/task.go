package models

import (
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority accepts any case; empty means MEDIUM.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

// Task is a to-do item inside a project.
// @Description Task
type Task struct {
	ID          int64      `json:"id" example:"1"`
	ProjectID   int64      `json:"projectId" example:"1"`
	CategoryID  *int64     `json:"categoryId,omitempty" example:"3"`
	Title       string     `json:"title" example:"Buy milk"`
	Description string     `json:"description" example:""`
	Priority    Priority   `json:"priority" example:"MEDIUM" enums:"LOW,MEDIUM,HIGH"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Filter narrows task listings. Nil fields match everything.
type Filter struct {
	CategoryID *int64
	Completed  *bool
	Priority   *Priority
}

func (f Filter) Match(t *Task) bool {
	if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	return true
}
