package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"liftlog/internal/domain"
)

// ExerciseRepo implements catalog persistence on DB.
type ExerciseRepo struct {
	db *DB
}

// NewExerciseRepo wraps a DB as a domain.ExerciseRepository.
func NewExerciseRepo(db *DB) *ExerciseRepo {
	return &ExerciseRepo{db: db}
}

// ListAll returns the whole catalog sorted by name.
func (r *ExerciseRepo) ListAll(ctx context.Context) ([]domain.Exercise, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM exercises ORDER BY name ASC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.Exercise{}
	for rows.Next() {
		var e domain.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByName retrieves an exercise by exact name.
func (r *ExerciseRepo) GetByName(ctx context.Context, name string) (*domain.Exercise, error) {
	return scanExercise(r.db.sql.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM exercises WHERE name = $1;`, name))
}

// GetByNameFold retrieves an exercise by case-insensitive name.
func (r *ExerciseRepo) GetByNameFold(ctx context.Context, name string) (*domain.Exercise, error) {
	return scanExercise(r.db.sql.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM exercises WHERE LOWER(name) = LOWER($1);`, name))
}

// Create inserts a new catalog exercise.
func (r *ExerciseRepo) Create(ctx context.Context, name string) (*domain.Exercise, error) {
	now := time.Now().UTC()
	var e domain.Exercise
	err := r.db.sql.QueryRowContext(ctx,
		`INSERT INTO exercises (name, created_at, updated_at) VALUES ($1, $2, $2)
		 RETURNING id, name, created_at, updated_at;`,
		name, now,
	).Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return &e, nil
}

func scanExercise(row *sql.Row) (*domain.Exercise, error) {
	var e domain.Exercise
	if err := row.Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
