package service

import (
	"context"
	"errors"
	"strings"

	dom "github.com/birlikkoshan/todo-api/internal/domain"
	"github.com/birlikkoshan/todo-api/internal/repo"
	"github.com/birlikkoshan/todo-api/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("email or username already registered")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// UserService handles account registration and credential checks.
type UserService struct {
	repo repo.UserRepo
	cost int
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost}
}

// Authenticate checks login (username or email) and password; returns the user if valid.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (dom.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, storeErr(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register creates a new user with a hashed password.
func (s *UserService) Register(ctx context.Context, email, username, password, confirm string) (dom.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return dom.User{}, invalid("email, username and password are required")
	}
	if password != confirm {
		return dom.User{}, ErrPasswordMismatch
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return dom.User{}, invalid("password must be at most 72 bytes")
		}
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, email, username, string(hash))
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrUserExists
		}
		return dom.User{}, storeErr(err)
	}
	return u, nil
}

// Get returns the user by id.
func (s *UserService) Get(ctx context.Context, id int64) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.User{}, storeErr(err)
	}
	return u, nil
}
