package app

import (
	"context"

	"liftlog/internal/domain"
)

// SetService encapsulates set-logging use cases. Updates are a full replace
// of {reps, weight}: a nil field clears the stored value rather than leaving
// it unchanged.
type SetService struct {
	sets domain.SetRepository
}

// NewSetService creates a SetService backed by the given repository.
func NewSetService(sets domain.SetRepository) *SetService {
	return &SetService{sets: sets}
}

// Create validates and appends a set to the workout exercise.
func (s *SetService) Create(ctx context.Context, workoutExerciseID int64, reps *int, weight *string, userID string) (*domain.Set, error) {
	if workoutExerciseID <= 0 {
		return nil, invalid("Invalid workout exercise id")
	}
	if err := validateSetFields(reps, weight); err != nil {
		return nil, err
	}
	return s.sets.Create(ctx, workoutExerciseID, reps, weight, userID)
}

// Update replaces the set's reps and weight.
func (s *SetService) Update(ctx context.Context, setID int64, reps *int, weight *string, userID string) (*domain.Set, error) {
	if setID <= 0 {
		return nil, invalid("Invalid set id")
	}
	if err := validateSetFields(reps, weight); err != nil {
		return nil, err
	}
	return s.sets.Update(ctx, setID, reps, weight, userID)
}

// Delete removes the set.
func (s *SetService) Delete(ctx context.Context, setID int64, userID string) (*domain.Set, error) {
	if setID <= 0 {
		return nil, invalid("Invalid set id")
	}
	return s.sets.Delete(ctx, setID, userID)
}

func validateSetFields(reps *int, weight *string) error {
	if reps != nil && *reps < 0 {
		return invalid("Reps must be zero or greater")
	}
	if weight != nil && !domain.ValidWeight(*weight) {
		return invalid("Weight must be a decimal with at most 2 decimal places")
	}
	return nil
}
