package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"liftlog/internal/domain"
)

// SetRepo implements set persistence on DB.
type SetRepo struct {
	db *DB
}

// NewSetRepo wraps a DB as a domain.SetRepository.
func NewSetRepo(db *DB) *SetRepo {
	return &SetRepo{db: db}
}

// Create appends a set to the link; ownership check and next-set-number
// computation are part of the insert itself.
func (r *SetRepo) Create(ctx context.Context, workoutExerciseID int64, reps *int, weight *string, userID string) (*domain.Set, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`INSERT INTO sets (workout_exercise_id, set_number, reps, weight, created_at)
		 SELECT ?,
		        COALESCE((SELECT MAX(set_number) FROM sets WHERE workout_exercise_id = ?), 0) + 1,
		        ?, ?, ?
		 WHERE EXISTS (
		   SELECT 1 FROM workout_exercises we
		   JOIN workouts w ON w.id = we.workout_id
		   WHERE we.id = ? AND w.user_id = ?)
		 RETURNING id, workout_exercise_id, set_number, reps, weight, created_at;`,
		workoutExerciseID, workoutExerciseID, nullInt(reps), nullStr(weight),
		fmtTime(time.Now()), workoutExerciseID, userID)
	set, err := scanSet(row)
	if err != nil || set == nil {
		return set, err
	}
	return r.withWorkoutID(ctx, set)
}

// Update replaces reps and weight together; nil clears the column.
func (r *SetRepo) Update(ctx context.Context, setID int64, reps *int, weight *string, userID string) (*domain.Set, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`UPDATE sets SET reps = ?, weight = ?
		 WHERE id = ? AND EXISTS (
		   SELECT 1 FROM workout_exercises we
		   JOIN workouts w ON w.id = we.workout_id
		   WHERE we.id = sets.workout_exercise_id AND w.user_id = ?)
		 RETURNING id, workout_exercise_id, set_number, reps, weight, created_at;`,
		nullInt(reps), nullStr(weight), setID, userID)
	set, err := scanSet(row)
	if err != nil || set == nil {
		return set, err
	}
	return r.withWorkoutID(ctx, set)
}

// Delete removes the set, returning the deleted row.
func (r *SetRepo) Delete(ctx context.Context, setID int64, userID string) (*domain.Set, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`DELETE FROM sets
		 WHERE id = ? AND EXISTS (
		   SELECT 1 FROM workout_exercises we
		   JOIN workouts w ON w.id = we.workout_id
		   WHERE we.id = sets.workout_exercise_id AND w.user_id = ?)
		 RETURNING id, workout_exercise_id, set_number, reps, weight, created_at;`,
		setID, userID)
	set, err := scanSet(row)
	if err != nil || set == nil {
		return set, err
	}
	return r.withWorkoutID(ctx, set)
}

// withWorkoutID resolves the set's workout through its link. A vanished link
// means a concurrent removal; the set is returned without a workout id.
func (r *SetRepo) withWorkoutID(ctx context.Context, s *domain.Set) (*domain.Set, error) {
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT workout_id FROM workout_exercises WHERE id = ?;`,
		s.WorkoutExerciseID).Scan(&s.WorkoutID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return s, nil
}

func scanSet(row *sql.Row) (*domain.Set, error) {
	s, err := scanSetRows(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func scanSetRows(row rowScanner) (*domain.Set, error) {
	var s domain.Set
	var reps sql.NullInt64
	var weight sql.NullString
	var created string
	if err := row.Scan(&s.ID, &s.WorkoutExerciseID, &s.SetNumber, &reps, &weight, &created); err != nil {
		return nil, err
	}
	if reps.Valid {
		v := int(reps.Int64)
		s.Reps = &v
	}
	if weight.Valid {
		v := weight.String
		s.Weight = &v
	}
	s.CreatedAt = parseTime(created)
	return &s, nil
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullStr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
