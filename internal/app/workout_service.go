package app

import (
	"context"
	"time"

	"liftlog/internal/domain"
)

// WorkoutService encapsulates workout and workout-exercise use cases. Every
// operation takes the caller's user ID explicitly; the service performs no
// ambient identity lookup, which keeps it testable without a request context.
type WorkoutService struct {
	workouts domain.WorkoutRepository
	links    domain.WorkoutExerciseRepository
	catalog  *CatalogService
}

// NewWorkoutService creates a WorkoutService backed by the given repositories.
func NewWorkoutService(workouts domain.WorkoutRepository, links domain.WorkoutExerciseRepository, catalog *CatalogService) *WorkoutService {
	return &WorkoutService{workouts: workouts, links: links, catalog: catalog}
}

// Create validates and stores a new workout owned by userID.
func (s *WorkoutService) Create(ctx context.Context, userID, name string, startedAt time.Time, notes string) (*domain.Workout, error) {
	if err := validateWorkoutFields(name, startedAt, notes); err != nil {
		return nil, err
	}
	return s.workouts.Create(ctx, userID, name, startedAt, notes)
}

// Get returns the workout iff it is owned by userID; (nil, nil) otherwise.
func (s *WorkoutService) Get(ctx context.Context, id int64, userID string) (*domain.Workout, error) {
	if id <= 0 {
		return nil, invalid("Invalid workout id")
	}
	return s.workouts.GetByID(ctx, id, userID)
}

// ListForDay returns the user's workouts for the local calendar day
// containing day, with their exercise summaries.
func (s *WorkoutService) ListForDay(ctx context.Context, userID string, day time.Time) ([]domain.WorkoutWithExercises, error) {
	return s.workouts.ListForDay(ctx, userID, day)
}

// Update replaces the workout's name, start time and notes.
func (s *WorkoutService) Update(ctx context.Context, id int64, userID, name string, startedAt time.Time, notes string) (*domain.Workout, error) {
	if id <= 0 {
		return nil, invalid("Invalid workout id")
	}
	if err := validateWorkoutFields(name, startedAt, notes); err != nil {
		return nil, err
	}
	return s.workouts.Update(ctx, id, userID, name, startedAt, notes)
}

// ListExercises returns the workout's links in order, each with its sets.
func (s *WorkoutService) ListExercises(ctx context.Context, workoutID int64, userID string) ([]domain.WorkoutExerciseWithSets, error) {
	if workoutID <= 0 {
		return nil, invalid("Invalid workout id")
	}
	return s.links.ListWithSets(ctx, workoutID, userID)
}

// AddExercise links an existing catalog exercise into the workout.
func (s *WorkoutService) AddExercise(ctx context.Context, workoutID, exerciseID int64, userID string) (*domain.WorkoutExercise, error) {
	if workoutID <= 0 {
		return nil, invalid("Invalid workout id")
	}
	if exerciseID <= 0 {
		return nil, invalid("Invalid exercise id")
	}
	return s.links.Add(ctx, workoutID, exerciseID, userID)
}

// AddNewExercise resolves exerciseName through the catalog's find-or-create
// and links the result into the workout.
func (s *WorkoutService) AddNewExercise(ctx context.Context, workoutID int64, exerciseName, userID string) (*domain.WorkoutExercise, error) {
	if workoutID <= 0 {
		return nil, invalid("Invalid workout id")
	}
	e, err := s.catalog.FindOrCreate(ctx, exerciseName)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}
	return s.links.Add(ctx, workoutID, e.ID, userID)
}

// RemoveExercise deletes the link and its sets.
func (s *WorkoutService) RemoveExercise(ctx context.Context, workoutExerciseID int64, userID string) (*domain.WorkoutExercise, error) {
	if workoutExerciseID <= 0 {
		return nil, invalid("Invalid workout exercise id")
	}
	return s.links.Remove(ctx, workoutExerciseID, userID)
}

func validateWorkoutFields(name string, startedAt time.Time, notes string) error {
	if name == "" {
		return invalid("Workout name is required")
	}
	if len(name) > 255 {
		return invalid("Workout name must be at most 255 characters")
	}
	if startedAt.IsZero() {
		return invalid("Start time is required")
	}
	if len(notes) > 1000 {
		return invalid("Notes must be at most 1000 characters")
	}
	return nil
}
