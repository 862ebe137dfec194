package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"liftlog/internal/domain"

	"github.com/lib/pq"
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
		 VALUES ($1, $2, $3, NULLIF($4, ''))
		 RETURNING id, user_id, name, started_at, completed_at, notes;`,
		userID, name, startedAt.UTC(), notes)
	return scanWorkout(row)
}

// GetByID returns the workout iff it is owned by userID.
func (r *WorkoutRepo) GetByID(ctx context.Context, id int64, userID string) (*domain.Workout, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`SELECT id, user_id, name, started_at, completed_at, notes
		 FROM workouts WHERE id = $1 AND user_id = $2;`, id, userID)
	return scanWorkout(row)
}

// ListForDay returns the user's workouts for the local calendar day
// containing day, each with its ordered distinct exercise summaries.
func (r *WorkoutRepo) ListForDay(ctx context.Context, userID string, day time.Time) ([]domain.WorkoutWithExercises, error) {
	dayStart, dayEnd := domain.LocalDayBounds(day)

	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, user_id, name, started_at, completed_at, notes
		 FROM workouts
		 WHERE user_id = $1 AND started_at >= $2 AND started_at < $3
		 ORDER BY started_at ASC;`,
		userID, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.WorkoutWithExercises{}
	index := map[int64]int{}
	var ids []int64
	for rows.Next() {
		w, err := scanWorkoutRows(rows)
		if err != nil {
			return nil, err
		}
		index[w.ID] = len(out)
		ids = append(ids, w.ID)
		out = append(out, domain.WorkoutWithExercises{Workout: *w, Exercises: []domain.ExerciseSummary{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	// One join for all workouts of the day, deduplicated per workout in link
	// order so an exercise added twice shows up once.
	exRows, err := r.db.sql.QueryContext(ctx,
		`SELECT we.workout_id, e.id, e.name
		 FROM workout_exercises we
		 JOIN exercises e ON e.id = we.exercise_id
		 WHERE we.workout_id = ANY($1)
		 ORDER BY we.workout_id, we."order" ASC;`,
		pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer exRows.Close() //nolint:errcheck

	seen := map[[2]int64]bool{}
	for exRows.Next() {
		var workoutID int64
		var s domain.ExerciseSummary
		if err := exRows.Scan(&workoutID, &s.ID, &s.Name); err != nil {
			return nil, err
		}
		key := [2]int64{workoutID, s.ID}
		if seen[key] {
			continue
		}
		seen[key] = true
		i := index[workoutID]
		out[i].Exercises = append(out[i].Exercises, s)
	}
	return out, exRows.Err()
}

// Update replaces name, startedAt and notes. The ownership check and the
// mutation are one conditional statement; zero rows means not found.
func (r *WorkoutRepo) Update(ctx context.Context, id int64, userID, name string, startedAt time.Time, notes string) (*domain.Workout, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`UPDATE workouts SET name = $3, started_at = $4, notes = NULLIF($5, '')
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, name, started_at, completed_at, notes;`,
		id, userID, name, startedAt.UTC(), notes)
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
	var name, notes sql.NullString
	var completedAt sql.NullTime
	if err := row.Scan(&w.ID, &w.UserID, &name, &w.StartedAt, &completedAt, &notes); err != nil {
		return nil, err
	}
	w.Name = name.String
	w.Notes = notes.String
	if completedAt.Valid {
		t := completedAt.Time
		w.CompletedAt = &t
	}
	return &w, nil
}
