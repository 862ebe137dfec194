// Package memory implements the domain repositories in memory, for tests and
// zero-dependency development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"liftlog/internal/domain"
)

// DB holds all in-memory state. Repositories created from the same DB share
// one mutex, so the read-max-then-insert sequences are atomic here too.
type DB struct {
	mu        sync.Mutex
	exercises []domain.Exercise
	workouts  []domain.Workout
	links     []domain.WorkoutExercise
	sets      []domain.Set
	users     []*domain.User
	sessions  map[string]*domain.Session

	exerciseID int64
	workoutID  int64
	linkID     int64
	setID      int64
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{sessions: make(map[string]*domain.Session)}
}

// Ensure interfaces are met.
var _ domain.ExerciseRepository = (*ExerciseRepo)(nil)
var _ domain.WorkoutRepository = (*WorkoutRepo)(nil)
var _ domain.WorkoutExerciseRepository = (*WorkoutExerciseRepo)(nil)
var _ domain.SetRepository = (*SetRepo)(nil)
var _ domain.UserRepository = (*UserRepo)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- ExerciseRepository ---

// ExerciseRepo implements catalog persistence on DB.
type ExerciseRepo struct{ db *DB }

// NewExerciseRepo wraps a DB as a domain.ExerciseRepository.
func NewExerciseRepo(db *DB) *ExerciseRepo { return &ExerciseRepo{db: db} }

// ListAll returns the catalog sorted by name.
func (r *ExerciseRepo) ListAll(ctx context.Context) ([]domain.Exercise, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Exercise, len(r.db.exercises))
	copy(out, r.db.exercises)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetByName retrieves an exercise by exact name.
func (r *ExerciseRepo) GetByName(ctx context.Context, name string) (*domain.Exercise, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.exercises {
		if r.db.exercises[i].Name == name {
			e := r.db.exercises[i]
			return &e, nil
		}
	}
	return nil, nil
}

// GetByNameFold retrieves an exercise by case-insensitive name.
func (r *ExerciseRepo) GetByNameFold(ctx context.Context, name string) (*domain.Exercise, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.exercises {
		if strings.EqualFold(r.db.exercises[i].Name, name) {
			e := r.db.exercises[i]
			return &e, nil
		}
	}
	return nil, nil
}

// Create inserts a new catalog exercise.
func (r *ExerciseRepo) Create(ctx context.Context, name string) (*domain.Exercise, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.exercises {
		if r.db.exercises[i].Name == name {
			return nil, domain.ErrConflict
		}
	}
	r.db.exerciseID++
	now := time.Now().UTC()
	e := domain.Exercise{ID: r.db.exerciseID, Name: name, CreatedAt: now, UpdatedAt: now}
	r.db.exercises = append(r.db.exercises, e)
	return &e, nil
}

// --- WorkoutRepository ---

// WorkoutRepo implements workout persistence on DB.
type WorkoutRepo struct{ db *DB }

// NewWorkoutRepo wraps a DB as a domain.WorkoutRepository.
func NewWorkoutRepo(db *DB) *WorkoutRepo { return &WorkoutRepo{db: db} }

// Create inserts a new workout owned by userID.
func (r *WorkoutRepo) Create(ctx context.Context, userID, name string, startedAt time.Time, notes string) (*domain.Workout, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.workoutID++
	w := domain.Workout{
		ID:        r.db.workoutID,
		UserID:    userID,
		Name:      name,
		StartedAt: startedAt.UTC(),
		Notes:     notes,
	}
	r.db.workouts = append(r.db.workouts, w)
	return &w, nil
}

// GetByID returns the workout iff it is owned by userID.
func (r *WorkoutRepo) GetByID(ctx context.Context, id int64, userID string) (*domain.Workout, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	w := r.db.findWorkout(id, userID)
	if w == nil {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

// ListForDay returns the user's workouts for the local day containing day.
func (r *WorkoutRepo) ListForDay(ctx context.Context, userID string, day time.Time) ([]domain.WorkoutWithExercises, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	dayStart, dayEnd := domain.LocalDayBounds(day)
	out := []domain.WorkoutWithExercises{}
	for i := range r.db.workouts {
		w := r.db.workouts[i]
		if w.UserID != userID {
			continue
		}
		if w.StartedAt.Before(dayStart.UTC()) || !w.StartedAt.Before(dayEnd.UTC()) {
			continue
		}
		out = append(out, domain.WorkoutWithExercises{
			Workout:   w,
			Exercises: r.db.exerciseSummaries(w.ID),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

// Update replaces name, startedAt and notes iff the workout is owned.
func (r *WorkoutRepo) Update(ctx context.Context, id int64, userID, name string, startedAt time.Time, notes string) (*domain.Workout, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	w := r.db.findWorkout(id, userID)
	if w == nil {
		return nil, nil
	}
	w.Name = name
	w.StartedAt = startedAt.UTC()
	w.Notes = notes
	cp := *w
	return &cp, nil
}

// findWorkout must be called with db.mu held.
func (db *DB) findWorkout(id int64, userID string) *domain.Workout {
	for i := range db.workouts {
		if db.workouts[i].ID == id && db.workouts[i].UserID == userID {
			return &db.workouts[i]
		}
	}
	return nil
}

// exerciseSummaries must be called with db.mu held.
func (db *DB) exerciseSummaries(workoutID int64) []domain.ExerciseSummary {
	links := db.linksFor(workoutID)
	out := []domain.ExerciseSummary{}
	seen := map[int64]bool{}
	for _, l := range links {
		if seen[l.ExerciseID] {
			continue
		}
		seen[l.ExerciseID] = true
		for i := range db.exercises {
			if db.exercises[i].ID == l.ExerciseID {
				out = append(out, domain.ExerciseSummary{ID: db.exercises[i].ID, Name: db.exercises[i].Name})
				break
			}
		}
	}
	return out
}

// linksFor must be called with db.mu held; results are ordered by Order.
func (db *DB) linksFor(workoutID int64) []domain.WorkoutExercise {
	out := []domain.WorkoutExercise{}
	for i := range db.links {
		if db.links[i].WorkoutID == workoutID {
			out = append(out, db.links[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// --- WorkoutExerciseRepository ---

// WorkoutExerciseRepo implements link persistence on DB.
type WorkoutExerciseRepo struct{ db *DB }

// NewWorkoutExerciseRepo wraps a DB as a domain.WorkoutExerciseRepository.
func NewWorkoutExerciseRepo(db *DB) *WorkoutExerciseRepo { return &WorkoutExerciseRepo{db: db} }

// Add appends the exercise to the workout under the shared lock, so the
// next-order computation cannot race.
func (r *WorkoutExerciseRepo) Add(ctx context.Context, workoutID, exerciseID int64, userID string) (*domain.WorkoutExercise, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.findWorkout(workoutID, userID) == nil {
		return nil, nil
	}
	next := 0
	for i := range r.db.links {
		if r.db.links[i].WorkoutID == workoutID && r.db.links[i].Order >= next {
			next = r.db.links[i].Order + 1
		}
	}
	r.db.linkID++
	we := domain.WorkoutExercise{
		ID:         r.db.linkID,
		WorkoutID:  workoutID,
		ExerciseID: exerciseID,
		Order:      next,
		CreatedAt:  time.Now().UTC(),
	}
	r.db.links = append(r.db.links, we)
	return &we, nil
}

// ListWithSets returns the workout's links in order with their sets.
func (r *WorkoutExerciseRepo) ListWithSets(ctx context.Context, workoutID int64, userID string) ([]domain.WorkoutExerciseWithSets, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := []domain.WorkoutExerciseWithSets{}
	if r.db.findWorkout(workoutID, userID) == nil {
		return out, nil
	}
	for _, l := range r.db.linksFor(workoutID) {
		item := domain.WorkoutExerciseWithSets{
			ID:         l.ID,
			ExerciseID: l.ExerciseID,
			Order:      l.Order,
			Sets:       []domain.Set{},
		}
		for i := range r.db.exercises {
			if r.db.exercises[i].ID == l.ExerciseID {
				item.ExerciseName = r.db.exercises[i].Name
				break
			}
		}
		for i := range r.db.sets {
			if r.db.sets[i].WorkoutExerciseID == l.ID {
				item.Sets = append(item.Sets, r.db.sets[i])
			}
		}
		sort.Slice(item.Sets, func(i, j int) bool { return item.Sets[i].SetNumber < item.Sets[j].SetNumber })
		out = append(out, item)
	}
	return out, nil
}

// Remove deletes the link and its sets.
func (r *WorkoutExerciseRepo) Remove(ctx context.Context, workoutExerciseID int64, userID string) (*domain.WorkoutExercise, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	idx := -1
	for i := range r.db.links {
		if r.db.links[i].ID == workoutExerciseID && r.db.findWorkout(r.db.links[i].WorkoutID, userID) != nil {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, nil
	}
	we := r.db.links[idx]

	kept := r.db.sets[:0]
	for _, s := range r.db.sets {
		if s.WorkoutExerciseID != workoutExerciseID {
			kept = append(kept, s)
		}
	}
	r.db.sets = kept
	r.db.links = append(r.db.links[:idx], r.db.links[idx+1:]...)
	return &we, nil
}

// --- SetRepository ---

// SetRepo implements set persistence on DB.
type SetRepo struct{ db *DB }

// NewSetRepo wraps a DB as a domain.SetRepository.
func NewSetRepo(db *DB) *SetRepo { return &SetRepo{db: db} }

// Create appends a set under the shared lock.
func (r *SetRepo) Create(ctx context.Context, workoutExerciseID int64, reps *int, weight *string, userID string) (*domain.Set, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if !r.db.ownsLink(workoutExerciseID, userID) {
		return nil, nil
	}
	next := 1
	for i := range r.db.sets {
		if r.db.sets[i].WorkoutExerciseID == workoutExerciseID && r.db.sets[i].SetNumber >= next {
			next = r.db.sets[i].SetNumber + 1
		}
	}
	r.db.setID++
	s := domain.Set{
		ID:                r.db.setID,
		WorkoutExerciseID: workoutExerciseID,
		WorkoutID:         r.db.linkWorkoutID(workoutExerciseID),
		SetNumber:         next,
		Reps:              copyInt(reps),
		Weight:            copyStr(weight),
		CreatedAt:         time.Now().UTC(),
	}
	r.db.sets = append(r.db.sets, s)
	cp := s
	return &cp, nil
}

// Update replaces reps and weight together; nil clears the field.
func (r *SetRepo) Update(ctx context.Context, setID int64, reps *int, weight *string, userID string) (*domain.Set, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.sets {
		if r.db.sets[i].ID == setID && r.db.ownsLink(r.db.sets[i].WorkoutExerciseID, userID) {
			r.db.sets[i].Reps = copyInt(reps)
			r.db.sets[i].Weight = copyStr(weight)
			cp := r.db.sets[i]
			return &cp, nil
		}
	}
	return nil, nil
}

// Delete removes the set, returning the deleted row.
func (r *SetRepo) Delete(ctx context.Context, setID int64, userID string) (*domain.Set, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.sets {
		if r.db.sets[i].ID == setID && r.db.ownsLink(r.db.sets[i].WorkoutExerciseID, userID) {
			s := r.db.sets[i]
			r.db.sets = append(r.db.sets[:i], r.db.sets[i+1:]...)
			return &s, nil
		}
	}
	return nil, nil
}

// linkWorkoutID must be called with db.mu held.
func (db *DB) linkWorkoutID(workoutExerciseID int64) int64 {
	for i := range db.links {
		if db.links[i].ID == workoutExerciseID {
			return db.links[i].WorkoutID
		}
	}
	return 0
}

// ownsLink must be called with db.mu held.
func (db *DB) ownsLink(workoutExerciseID int64, userID string) bool {
	for i := range db.links {
		if db.links[i].ID == workoutExerciseID {
			return db.findWorkout(db.links[i].WorkoutID, userID) != nil
		}
	}
	return false
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func copyStr(v *string) *string {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// --- UserRepository ---

// UserRepo implements user persistence on DB.
type UserRepo struct{ db *DB }

// NewUserRepo wraps a DB as a domain.UserRepository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// GetByUsername retrieves a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, id, username, passwordHash string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Username == username || u.ID == id {
			return nil, domain.ErrConflict
		}
	}
	u := &domain.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	r.db.users = append(r.db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence on DB.
type SessionRepo struct{ db *DB }

// NewSessionRepo wraps a DB as a domain.SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo { return &SessionRepo{db: db} }

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
