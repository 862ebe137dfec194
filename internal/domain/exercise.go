// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrConflict indicates a storage-level uniqueness violation, such as two
// callers racing to create the same exercise name.
var ErrConflict = errors.New("already exists")

// Exercise is an entry in the shared exercise catalog. The catalog is global:
// exercises are not owned by any user.
type Exercise struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ExerciseRepository is the port for catalog persistence. Lookups return
// (nil, nil) when no exercise matches.
type ExerciseRepository interface {
	// ListAll returns the whole catalog sorted by name ascending.
	ListAll(ctx context.Context) ([]Exercise, error)
	// GetByName matches the exact, case-sensitive name.
	GetByName(ctx context.Context, name string) (*Exercise, error)
	// GetByNameFold matches the name case-insensitively.
	GetByNameFold(ctx context.Context, name string) (*Exercise, error)
	// Create inserts a new exercise. A duplicate name fails with ErrConflict.
	Create(ctx context.Context, name string) (*Exercise, error)
}
