package app

import (
	"context"
	"errors"
	"strings"

	"liftlog/internal/domain"
)

// CatalogService encapsulates exercise-catalog use cases. The catalog is
// shared across users and append-only: nothing here updates or deletes.
type CatalogService struct {
	exercises domain.ExerciseRepository
}

// NewCatalogService creates a CatalogService backed by the given repository.
func NewCatalogService(exercises domain.ExerciseRepository) *CatalogService {
	return &CatalogService{exercises: exercises}
}

// List returns the whole catalog sorted by name.
func (s *CatalogService) List(ctx context.Context) ([]domain.Exercise, error) {
	return s.exercises.ListAll(ctx)
}

// FindOrCreate resolves a typed exercise name to a catalog row, creating one
// when no case-insensitive match exists. A concurrent duplicate create is
// retried as a lookup, so two racing callers converge on the same row.
func (s *CatalogService) FindOrCreate(ctx context.Context, name string) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("Exercise name is required")
	}
	if len(name) > 255 {
		return nil, invalid("Exercise name must be at most 255 characters")
	}

	e, err := s.exercises.GetByNameFold(ctx, name)
	if err != nil {
		return nil, err
	}
	if e != nil {
		return e, nil
	}

	e, err = s.exercises.Create(ctx, name)
	if errors.Is(err, domain.ErrConflict) {
		return s.exercises.GetByNameFold(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}
