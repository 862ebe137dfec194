package sqlite

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
		var created, updated string
		if err := rows.Scan(&e.ID, &e.Name, &created, &updated); err != nil {
			return nil, err
		}
		e.CreatedAt, e.UpdatedAt = parseTime(created), parseTime(updated)
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByName retrieves an exercise by exact name. SQLite's default binary
// collation makes = case-sensitive, matching the Postgres adapter.
func (r *ExerciseRepo) GetByName(ctx context.Context, name string) (*domain.Exercise, error) {
	return scanExercise(r.db.sql.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM exercises WHERE name = ?;`, name))
}

// GetByNameFold retrieves an exercise by case-insensitive name.
func (r *ExerciseRepo) GetByNameFold(ctx context.Context, name string) (*domain.Exercise, error) {
	return scanExercise(r.db.sql.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM exercises WHERE LOWER(name) = LOWER(?);`, name))
}

// Create inserts a new catalog exercise.
func (r *ExerciseRepo) Create(ctx context.Context, name string) (*domain.Exercise, error) {
	now := fmtTime(time.Now())
	row := r.db.sql.QueryRowContext(ctx,
		`INSERT INTO exercises (name, created_at, updated_at) VALUES (?, ?, ?)
		 RETURNING id, name, created_at, updated_at;`,
		name, now, now)
	e, err := scanExercise(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return e, nil
}

func scanExercise(row *sql.Row) (*domain.Exercise, error) {
	var e domain.Exercise
	var created, updated string
	if err := row.Scan(&e.ID, &e.Name, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e.CreatedAt, e.UpdatedAt = parseTime(created), parseTime(updated)
	return &e, nil
}
