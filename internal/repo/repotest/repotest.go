// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	dom "github.com/birlikkoshan/todo-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TodoRepo is an in-memory repo.TodoRepo. Err, when set, is returned by every call.
type TodoRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]dom.Todo

	Err   error
	Calls int
}

func NewTodoRepo() *TodoRepo {
	return &TodoRepo{rows: make(map[int64]dom.Todo)}
}

// Len returns the number of stored rows across all owners.
func (r *TodoRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *TodoRepo) Create(_ context.Context, t dom.Todo) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return dom.Todo{}, r.Err
	}
	r.nextID++
	t.ID = r.nextID
	t.Description = clone(t.Description)
	r.rows[t.ID] = t
	return t, nil
}

func (r *TodoRepo) GetByID(_ context.Context, userID, id int64) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return dom.Todo{}, r.Err
	}
	t, ok := r.rows[id]
	if !ok || t.UserID != userID {
		return dom.Todo{}, pgx.ErrNoRows
	}
	t.Description = clone(t.Description)
	return t, nil
}

func (r *TodoRepo) List(_ context.Context, userID int64, f dom.ListFilter) ([]dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return nil, r.Err
	}
	list := make([]dom.Todo, 0)
	for _, t := range r.rows {
		if t.UserID != userID || (f.Status != "" && t.Status != f.Status) {
			continue
		}
		t.Description = clone(t.Description)
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *TodoRepo) Update(_ context.Context, t dom.Todo) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return dom.Todo{}, r.Err
	}
	cur, ok := r.rows[t.ID]
	if !ok || cur.UserID != t.UserID {
		return dom.Todo{}, pgx.ErrNoRows
	}
	cur.Title = t.Title
	cur.Description = clone(t.Description)
	cur.Status = t.Status
	cur.UpdatedAt = t.UpdatedAt
	r.rows[t.ID] = cur
	return cur, nil
}

func (r *TodoRepo) Delete(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return r.Err
	}
	t, ok := r.rows[id]
	if !ok || t.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(r.rows, id)
	return nil
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// UserRepo is an in-memory repo.UserRepo enforcing unique email and username.
type UserRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]dom.User

	Err error
}

func NewUserRepo() *UserRepo {
	return &UserRepo{rows: make(map[int64]dom.User)}
}

func (r *UserRepo) GetByLogin(_ context.Context, login string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return dom.User{}, r.Err
	}
	for _, u := range r.rows {
		if u.Username == login || strings.EqualFold(u.Email, login) {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return dom.User{}, r.Err
	}
	u, ok := r.rows[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *UserRepo) Create(_ context.Context, email, username, passwordHash string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return dom.User{}, r.Err
	}
	for _, u := range r.rows {
		if u.Username == username || strings.EqualFold(u.Email, email) {
			return dom.User{}, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	r.nextID++
	u := dom.User{
		ID:           r.nextID,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.rows[u.ID] = u
	return u, nil
}
