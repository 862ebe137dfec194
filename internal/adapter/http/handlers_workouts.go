package adapthttp

import (
	"fmt"
	"net/http"
	"time"

	"liftlog/internal/domain"
)

const dashboardView = "/dashboard"

func workoutView(id int64) string {
	return fmt.Sprintf("/dashboard/workout/%d", id)
}

type workoutRequest struct {
	Name      string    `json:"name"`
	StartedAt time.Time `json:"startedAt"`
	Notes     string    `json:"notes"`
}

func (s *Server) handleWorkouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleWorkoutDay(w, r)
	case http.MethodPost:
		s.handleWorkoutCreate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleWorkoutDay(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	day := time.Now()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	if s.views.serveConditional(w, r, user.ID, dashboardView) {
		return
	}

	workouts, err := s.workouts.ListForDay(r.Context(), user.ID, day)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":     day.Format("2006-01-02"),
		"workouts": workouts,
	})
}

func (s *Server) handleWorkoutCreate(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req workoutRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	workout, err := s.workouts.Create(r.Context(), user.ID, req.Name, req.StartedAt, req.Notes)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.views.Invalidate(user.ID, dashboardView)
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleWorkoutByID(w http.ResponseWriter, r *http.Request) {
	id, tail, ok := pathID(r, "/workouts/")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case tail == "" && r.Method == http.MethodGet:
		s.handleWorkoutDetail(w, r, id)
	case tail == "" && r.Method == http.MethodPut:
		s.handleWorkoutUpdate(w, r, id)
	case tail == "exercises" && r.Method == http.MethodPost:
		s.handleWorkoutAddExercise(w, r, id)
	case tail == "":
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleWorkoutDetail(w http.ResponseWriter, r *http.Request, id int64) {
	user := userFrom(r)

	workout, err := s.workouts.Get(r.Context(), id, user.ID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if workout == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	// Only after ownership is established: a guessed validator must see the
	// same 404 as any other request for a workout the caller cannot read.
	if s.views.serveConditional(w, r, user.ID, workoutView(id)) {
		return
	}

	exercises, err := s.workouts.ListExercises(r.Context(), id, user.ID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"workout":   workout,
		"exercises": exercises,
	})
}

func (s *Server) handleWorkoutUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	user := userFrom(r)

	var req workoutRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	workout, err := s.workouts.Update(r.Context(), id, user.ID, req.Name, req.StartedAt, req.Notes)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if workout == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	s.views.Invalidate(user.ID, dashboardView, workoutView(id))
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleWorkoutAddExercise(w http.ResponseWriter, r *http.Request, id int64) {
	user := userFrom(r)

	var req struct {
		ExerciseID   int64  `json:"exerciseId"`
		ExerciseName string `json:"exerciseName"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var link *domain.WorkoutExercise
	var err error
	if req.ExerciseName != "" {
		link, err = s.workouts.AddNewExercise(r.Context(), id, req.ExerciseName, user.ID)
	} else {
		link, err = s.workouts.AddExercise(r.Context(), id, req.ExerciseID, user.ID)
	}
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if link == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	s.views.Invalidate(user.ID, dashboardView, workoutView(id))
	writeJSON(w, http.StatusCreated, link)
}

func (s *Server) handleWorkoutExerciseByID(w http.ResponseWriter, r *http.Request) {
	id, tail, ok := pathID(r, "/workout-exercises/")
	if !ok || tail != "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFrom(r)
	link, err := s.workouts.RemoveExercise(r.Context(), id, user.ID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if link == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	s.views.Invalidate(user.ID, dashboardView, workoutView(link.WorkoutID))
	writeJSON(w, http.StatusOK, link)
}
