package domain

import (
	"context"
	"time"
)

// Workout is a single workout session owned by exactly one user. UserID is an
// opaque string identity; nothing in this package interprets it.
type Workout struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"-"`
	Name        string     `json:"name"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// ExerciseSummary is the {id, name} projection used on the day view.
type ExerciseSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// WorkoutWithExercises is a workout enriched with the distinct exercises it
// contains, in link order.
type WorkoutWithExercises struct {
	Workout
	Exercises []ExerciseSummary `json:"exercises"`
}

// WorkoutRepository is the port for workout persistence. Every read and
// mutation is scoped by the owning user: a workout that exists but belongs to
// someone else is indistinguishable from one that does not exist, so lookups
// return (nil, nil) in both cases.
type WorkoutRepository interface {
	Create(ctx context.Context, userID, name string, startedAt time.Time, notes string) (*Workout, error)
	GetByID(ctx context.Context, id int64, userID string) (*Workout, error)
	// ListForDay returns the user's workouts whose startedAt falls within the
	// local calendar day containing day.
	ListForDay(ctx context.Context, userID string, day time.Time) ([]WorkoutWithExercises, error)
	// Update replaces name, startedAt and notes in a single conditional
	// statement; zero rows matched means not found (or not owned).
	Update(ctx context.Context, id int64, userID, name string, startedAt time.Time, notes string) (*Workout, error)
}

// LocalDayBounds returns the half-open interval [start, end) of the local
// calendar day containing t.
func LocalDayBounds(t time.Time) (start, end time.Time) {
	lt := t.In(time.Local)
	start = time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.Local)
	return start, start.Add(24 * time.Hour)
}
