package services

import (
	"errors"

	"studybud/internal/database"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// notFound folds the store's missing-row error into ErrNotFound and leaves
// other errors untouched.
func notFound(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
