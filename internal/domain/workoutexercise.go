package domain

import (
	"context"
	"time"
)

// WorkoutExercise links one catalog exercise into one workout at a given
// position. Order is a zero-based append-only sequence per workout: it is
// never renumbered, so deletions leave gaps.
type WorkoutExercise struct {
	ID         int64     `json:"id"`
	WorkoutID  int64     `json:"workoutId"`
	ExerciseID int64     `json:"exerciseId"`
	Order      int       `json:"order"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WorkoutExerciseWithSets is a link joined with its exercise name and its
// sets ordered by set number.
type WorkoutExerciseWithSets struct {
	ID           int64  `json:"id"`
	ExerciseID   int64  `json:"exerciseId"`
	ExerciseName string `json:"exerciseName"`
	Order        int    `json:"order"`
	Sets         []Set  `json:"sets"`
}

// WorkoutExerciseRepository is the port for workout-exercise links. Ownership
// is transitive through the parent workout; operations on links the caller
// cannot reach return (nil, nil).
type WorkoutExerciseRepository interface {
	// Add appends exerciseID to the workout. The ownership check, the
	// next-order computation and the insert are a single atomic statement, so
	// concurrent adds against one workout cannot observe the same order.
	Add(ctx context.Context, workoutID, exerciseID int64, userID string) (*WorkoutExercise, error)
	// ListWithSets returns the workout's links in order, each with its sets.
	// An unowned or unknown workout yields an empty slice, not an error.
	ListWithSets(ctx context.Context, workoutID int64, userID string) ([]WorkoutExerciseWithSets, error)
	// Remove deletes the link and, explicitly, every set attached to it.
	Remove(ctx context.Context, workoutExerciseID int64, userID string) (*WorkoutExercise, error)
}
