package repo

import (
	"context"

	dom "github.com/birlikkoshan/todo-api/internal/domain"

	"github.com/jackc/pgx/v5"
)

// TodoRepo persists todos. Every lookup is scoped to the owning user;
// a row owned by someone else behaves exactly like a missing one (pgx.ErrNoRows).
type TodoRepo interface {
	Create(ctx context.Context, t dom.Todo) (dom.Todo, error)
	GetByID(ctx context.Context, userID, id int64) (dom.Todo, error)
	List(ctx context.Context, userID int64, f dom.ListFilter) ([]dom.Todo, error)
	Update(ctx context.Context, t dom.Todo) (dom.Todo, error)
	Delete(ctx context.Context, userID, id int64) error
}

const todoColumns = `id, user_id, title, description, status, created_at, updated_at`

type PGTodoRepo struct {
	db DBTX
}

func NewPGTodoRepo(db DBTX) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

func (r *PGTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := `
		INSERT INTO todos (user_id, title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + todoColumns
	return scanTodo(r.db.QueryRow(ctx, query,
		t.UserID, t.Title, t.Description, string(t.Status), t.CreatedAt, t.UpdatedAt,
	))
}

func (r *PGTodoRepo) GetByID(ctx context.Context, userID, id int64) (dom.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND user_id = $2`
	return scanTodo(r.db.QueryRow(ctx, query, id, userID))
}

func (r *PGTodoRepo) List(ctx context.Context, userID int64, f dom.ListFilter) ([]dom.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE user_id = $1 AND ($2::text = '' OR status = $2::text)
		ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, userID, string(f.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]dom.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Update overwrites the mutable columns. Ownership is part of the WHERE clause
// and is never written.
func (r *PGTodoRepo) Update(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := `
		UPDATE todos SET title = $3, description = $4, status = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
		RETURNING ` + todoColumns
	return scanTodo(r.db.QueryRow(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, string(t.Status), t.UpdatedAt,
	))
}

func (r *PGTodoRepo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTodo(row pgx.Row) (dom.Todo, error) {
	var (
		t      dom.Todo
		status string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return dom.Todo{}, err
	}
	t.Status = dom.Status(status)
	return t, nil
}
