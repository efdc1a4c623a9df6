package dto

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	dom "github.com/birlikkoshan/todo-api/internal/domain"
)

var ErrInvalidStatus = errors.New("status must be pending or completed")

type CreateTodoRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=255" example:"Buy milk"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	Status      dom.Status `json:"status" binding:"omitempty,oneof=pending completed" example:"pending"`
}

// ToDomain maps the request to the service input. Status may stay empty.
func (r CreateTodoRequest) ToDomain() dom.NewTodo {
	return dom.NewTodo{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
	}
}

// UpdateTodoRequest is a partial update. A field that is not sent stays unchanged;
// "description": null or a blank string clears the description.
type UpdateTodoRequest struct {
	Title       Optional[string]     `json:"title" swaggertype:"string"`
	Description Optional[string]     `json:"description" swaggertype:"string"`
	Status      Optional[dom.Status] `json:"status" swaggertype:"string" enums:"pending,completed"`
}

// Validate checks the fields that were sent.
func (r UpdateTodoRequest) Validate() error {
	if r.Title.Set {
		if r.Title.Null || strings.TrimSpace(r.Title.Value) == "" {
			return errors.New("title must not be empty")
		}
		if utf8.RuneCountInString(r.Title.Value) > 255 {
			return errors.New("title must be at most 255 characters")
		}
	}
	if r.Description.Set && utf8.RuneCountInString(r.Description.Value) > 2000 {
		return errors.New("description must be at most 2000 characters")
	}
	if r.Status.Set && (r.Status.Null || !r.Status.Value.Valid()) {
		return ErrInvalidStatus
	}
	return nil
}

// ToPatch maps the request to a domain patch. Call Validate first.
func (r UpdateTodoRequest) ToPatch() dom.TodoPatch {
	var p dom.TodoPatch
	p.Title = r.Title.Ptr()
	if r.Description.Set {
		if r.Description.Null || strings.TrimSpace(r.Description.Value) == "" {
			p.ClearDescription = true
		} else {
			p.Description = r.Description.Ptr()
		}
	}
	p.Status = r.Status.Ptr()
	return p
}

// TodoResponse is the read shape returned by every todo endpoint.
type TodoResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      dom.Status `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewTodoResponse(t dom.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTodoResponses(list []dom.Todo) []TodoResponse {
	out := make([]TodoResponse, len(list))
	for i := range list {
		out[i] = NewTodoResponse(list[i])
	}
	return out
}

// ListTodosQuery is the query string of GET /todos.
type ListTodosQuery struct {
	Status dom.Status `form:"status" binding:"omitempty,oneof=pending completed"`
}
