package domain

import (
	"context"
	"time"
)

// Set is one logged set within a workout exercise. SetNumber is a 1-based
// append-only sequence per link; gaps after deletion are expected. Weight is
// carried as a validated decimal string, never a float, so NUMERIC(10,2)
// values round-trip exactly. WorkoutID is resolved through the parent link so
// callers can tell which workout a mutation touched.
type Set struct {
	ID                int64     `json:"id"`
	WorkoutExerciseID int64     `json:"workoutExerciseId"`
	WorkoutID         int64     `json:"workoutId"`
	SetNumber         int       `json:"setNumber"`
	Reps              *int      `json:"reps"`
	Weight            *string   `json:"weight"`
	CreatedAt         time.Time `json:"createdAt"`
}

// SetRepository is the port for set persistence. Ownership resolves through
// the two-hop chain set -> workout_exercise -> workout; unreachable rows are
// reported as (nil, nil).
type SetRepository interface {
	// Create appends a set to the link. Like WorkoutExerciseRepository.Add,
	// the ownership check and next-number computation happen inside one
	// atomic insert.
	Create(ctx context.Context, workoutExerciseID int64, reps *int, weight *string, userID string) (*Set, error)
	// Update replaces both reps and weight; a nil field clears the column.
	Update(ctx context.Context, setID int64, reps *int, weight *string, userID string) (*Set, error)
	Delete(ctx context.Context, setID int64, userID string) (*Set, error)
}

// ValidWeight reports whether s is a non-negative decimal acceptable for the
// weight column: at most 8 digits before the point and at most 2 after.
func ValidWeight(s string) bool {
	if s == "" {
		return false
	}
	intDigits, fracDigits := 0, 0
	seenDot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			if seenDot {
				fracDigits++
			} else {
				intDigits++
			}
		case r == '.' && !seenDot:
			seenDot = true
		default:
			return false
		}
	}
	if intDigits == 0 || intDigits > 8 {
		return false
	}
	if seenDot && (fracDigits == 0 || fracDigits > 2) {
		return false
	}
	return true
}
