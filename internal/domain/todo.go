package domain

import "time"

// Status is the lifecycle state of a todo.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Domain entity: the persisted todo record.
// Does not depend on Gin, Postgres or Redis.
type Todo struct {
	ID          int64
	UserID      int64
	Title       string
	Description *string
	Status      Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTodo holds caller-supplied fields for a todo being created.
// An empty Status means StatusPending.
type NewTodo struct {
	Title       string
	Description *string
	Status      Status
}

// TodoPatch is a partial update. A nil field is left untouched.
// ClearDescription takes precedence over Description.
type TodoPatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *Status
}

// Empty reports whether the patch changes no field.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && !p.ClearDescription && p.Status == nil
}

// Apply returns t with the patch applied. ID, UserID and timestamps are kept.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	switch {
	case p.ClearDescription:
		t.Description = nil
	case p.Description != nil:
		d := *p.Description
		t.Description = &d
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return t
}

// ListFilter narrows List results. Zero value lists everything.
type ListFilter struct {
	Status Status
}
