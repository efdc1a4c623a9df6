package repo

import (
	"context"

	dom "github.com/birlikkoshan/todo-api/internal/domain"
)

// UserRepo provides user persistence.
type UserRepo interface {
	GetByLogin(ctx context.Context, login string) (dom.User, error)
	GetByID(ctx context.Context, id int64) (dom.User, error)
	Create(ctx context.Context, email, username, passwordHash string) (dom.User, error)
}

const userColumns = `id, email, username, password_hash, created_at`

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db DBTX
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db DBTX) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// GetByLogin returns the user whose username or email equals login.
func (r *PGUserRepo) GetByLogin(ctx context.Context, login string) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR lower(email) = lower($1) LIMIT 1`,
		login,
	).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// GetByID returns the user by primary key.
func (r *PGUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// Create inserts a new user and returns it.
func (r *PGUserRepo) Create(ctx context.Context, email, username, passwordHash string) (dom.User, error) {
	query := `
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns
	var u dom.User
	err := r.db.QueryRow(ctx, query, email, username, passwordHash).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt,
	)
	return u, err
}
