package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"liftlog/internal/domain"
)

// WorkoutRepo implements workout persistence on DB.
type WorkoutRepo struct {
	db *DB
}

// NewWorkoutRepo wraps a DB as a domain.WorkoutRepository.
func NewWorkoutRepo(db *DB) *WorkoutRepo {
	return &WorkoutRepo{db: db}
}

// Create inserts a new workout owned by userID.
func (r *WorkoutRepo) Create(ctx context.Context, userID, name string, startedAt time.Time, notes string) (*domain.Workout, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`INSERT INTO workouts (user_id, name, started_at, notes)
		 VALUES (?, ?, ?, NULLIF(?, ''))
		 RETURNING id, user_id, name, started_at, completed_at, notes;`,
		userID, name, fmtTime(startedAt), notes)
	return scanWorkout(row)
}

// GetByID returns the workout iff it is owned by userID.
func (r *WorkoutRepo) GetByID(ctx context.Context, id int64, userID string) (*domain.Workout, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`SELECT id, user_id, name, started_at, completed_at, notes
		 FROM workouts WHERE id = ? AND user_id = ?;`, id, userID)
	return scanWorkout(row)
}

// ListForDay returns the user's workouts for the local calendar day
// containing day, each with its ordered distinct exercise summaries.
func (r *WorkoutRepo) ListForDay(ctx context.Context, userID string, day time.Time) ([]domain.WorkoutWithExercises, error) {
	dayStart, dayEnd := domain.LocalDayBounds(day)

	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, user_id, name, started_at, completed_at, notes
		 FROM workouts
		 WHERE user_id = ? AND started_at >= ? AND started_at < ?
		 ORDER BY started_at ASC;`,
		userID, fmtTime(dayStart), fmtTime(dayEnd))
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.WorkoutWithExercises{}
	for rows.Next() {
		w, err := scanWorkoutRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.WorkoutWithExercises{Workout: *w, Exercises: []domain.ExerciseSummary{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		exRows, err := r.db.sql.QueryContext(ctx,
			`SELECT e.id, e.name
			 FROM workout_exercises we
			 JOIN exercises e ON e.id = we.exercise_id
			 WHERE we.workout_id = ?
			 ORDER BY we."order" ASC;`, out[i].ID)
		if err != nil {
			return nil, err
		}
		seen := map[int64]bool{}
		for exRows.Next() {
			var s domain.ExerciseSummary
			if err := exRows.Scan(&s.ID, &s.Name); err != nil {
				_ = exRows.Close()
				return nil, err
			}
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			out[i].Exercises = append(out[i].Exercises, s)
		}
		if err := exRows.Err(); err != nil {
			_ = exRows.Close()
			return nil, err
		}
		_ = exRows.Close()
	}
	return out, nil
}

// Update replaces name, startedAt and notes in one conditional statement;
// zero rows means not found.
func (r *WorkoutRepo) Update(ctx context.Context, id int64, userID, name string, startedAt time.Time, notes string) (*domain.Workout, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`UPDATE workouts SET name = ?, started_at = ?, notes = NULLIF(?, '')
		 WHERE id = ? AND user_id = ?
		 RETURNING id, user_id, name, started_at, completed_at, notes;`,
		name, fmtTime(startedAt), notes, id, userID)
	return scanWorkout(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row *sql.Row) (*domain.Workout, error) {
	w, err := scanWorkoutRows(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

func scanWorkoutRows(row rowScanner) (*domain.Workout, error) {
	var w domain.Workout
	var name, notes, completedAt sql.NullString
	var startedAt string
	if err := row.Scan(&w.ID, &w.UserID, &name, &startedAt, &completedAt, &notes); err != nil {
		return nil, err
	}
	w.Name = name.String
	w.Notes = notes.String
	w.StartedAt = parseTime(startedAt)
	if completedAt.Valid {
		t := parseTime(completedAt.String)
		w.CompletedAt = &t
	}
	return &w, nil
}
