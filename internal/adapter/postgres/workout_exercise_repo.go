package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"liftlog/internal/domain"
)

// WorkoutExerciseRepo implements workout-exercise link persistence on DB.
type WorkoutExerciseRepo struct {
	db *DB
}

// NewWorkoutExerciseRepo wraps a DB as a domain.WorkoutExerciseRepository.
func NewWorkoutExerciseRepo(db *DB) *WorkoutExerciseRepo {
	return &WorkoutExerciseRepo{db: db}
}

// Add appends the exercise to the workout. The ownership check, the
// next-order computation and the insert run as one statement, so two
// concurrent adds cannot observe the same order value. Zero rows returned
// means the workout does not exist or is not owned by userID.
func (r *WorkoutExerciseRepo) Add(ctx context.Context, workoutID, exerciseID int64, userID string) (*domain.WorkoutExercise, error) {
	var we domain.WorkoutExercise
	err := r.db.sql.QueryRowContext(ctx,
		`INSERT INTO workout_exercises (workout_id, exercise_id, "order", created_at)
		 SELECT $1, $2,
		        COALESCE((SELECT MAX("order") FROM workout_exercises WHERE workout_id = $1), -1) + 1,
		        $3
		 WHERE EXISTS (SELECT 1 FROM workouts WHERE id = $1 AND user_id = $4)
		 RETURNING id, workout_id, exercise_id, "order", created_at;`,
		workoutID, exerciseID, time.Now().UTC(), userID,
	).Scan(&we.ID, &we.WorkoutID, &we.ExerciseID, &we.Order, &we.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &we, nil
}

// ListWithSets returns the workout's links in order, each carrying its sets
// ordered by set number. An unowned or unknown workout yields an empty slice.
func (r *WorkoutExerciseRepo) ListWithSets(ctx context.Context, workoutID int64, userID string) ([]domain.WorkoutExerciseWithSets, error) {
	out := []domain.WorkoutExerciseWithSets{}

	var one int
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT 1 FROM workouts WHERE id = $1 AND user_id = $2;`, workoutID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT we.id, we.exercise_id, e.name, we."order"
		 FROM workout_exercises we
		 JOIN exercises e ON e.id = we.exercise_id
		 WHERE we.workout_id = $1
		 ORDER BY we."order" ASC;`, workoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	index := map[int64]int{}
	for rows.Next() {
		var we domain.WorkoutExerciseWithSets
		if err := rows.Scan(&we.ID, &we.ExerciseID, &we.ExerciseName, &we.Order); err != nil {
			return nil, err
		}
		we.Sets = []domain.Set{}
		index[we.ID] = len(out)
		out = append(out, we)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	setRows, err := r.db.sql.QueryContext(ctx,
		`SELECT s.id, s.workout_exercise_id, s.set_number, s.reps, s.weight, s.created_at
		 FROM sets s
		 JOIN workout_exercises we ON we.id = s.workout_exercise_id
		 WHERE we.workout_id = $1
		 ORDER BY s.set_number ASC;`, workoutID)
	if err != nil {
		return nil, err
	}
	defer setRows.Close() //nolint:errcheck

	for setRows.Next() {
		s, err := scanSetRows(setRows)
		if err != nil {
			return nil, err
		}
		s.WorkoutID = workoutID
		i := index[s.WorkoutExerciseID]
		out[i].Sets = append(out[i].Sets, *s)
	}
	return out, setRows.Err()
}

// Remove deletes the link and its sets inside one transaction. The cascade to
// sets is explicit rather than delegated to the storage engine.
func (r *WorkoutExerciseRepo) Remove(ctx context.Context, workoutExerciseID int64, userID string) (*domain.WorkoutExercise, error) {
	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	var we domain.WorkoutExercise
	err = tx.QueryRowContext(ctx,
		`SELECT we.id, we.workout_id, we.exercise_id, we."order", we.created_at
		 FROM workout_exercises we
		 JOIN workouts w ON w.id = we.workout_id
		 WHERE we.id = $1 AND w.user_id = $2;`,
		workoutExerciseID, userID,
	).Scan(&we.ID, &we.WorkoutID, &we.ExerciseID, &we.Order, &we.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sets WHERE workout_exercise_id = $1;`, workoutExerciseID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM workout_exercises WHERE id = $1;`, workoutExerciseID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &we, nil
}
