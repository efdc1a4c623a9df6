package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrNotFound covers both missing rows and rows owned by another user.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks malformed or incomplete input.
	ErrValidation = errors.New("validation error")
	// ErrPersistence marks storage failures.
	ErrPersistence = errors.New("persistence failure")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// storeErr maps a repository error onto the service taxonomy.
func storeErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
