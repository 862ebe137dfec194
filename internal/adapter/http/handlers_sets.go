package adapthttp

import (
	"net/http"

	"liftlog/internal/domain"
)

type setRequest struct {
	WorkoutExerciseID int64   `json:"workoutExerciseId"`
	Reps              *int    `json:"reps"`
	Weight            *string `json:"weight"`
}

func (s *Server) handleSets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFrom(r)
	var req setRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	set, err := s.sets.Create(r.Context(), req.WorkoutExerciseID, req.Reps, req.Weight, user.ID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if set == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	s.views.Invalidate(user.ID, dashboardView, workoutView(set.WorkoutID))
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleSetByID(w http.ResponseWriter, r *http.Request) {
	id, tail, ok := pathID(r, "/sets/")
	if !ok || tail != "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	user := userFrom(r)
	var set *domain.Set
	var err error

	switch r.Method {
	case http.MethodPut:
		var req setRequest
		if perr := parseJSON(r, &req); perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		set, err = s.sets.Update(r.Context(), id, req.Reps, req.Weight, user.ID)
	case http.MethodDelete:
		set, err = s.sets.Delete(r.Context(), id, user.ID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err != nil {
		s.serviceError(w, err)
		return
	}
	if set == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	s.views.Invalidate(user.ID, dashboardView, workoutView(set.WorkoutID))
	writeJSON(w, http.StatusOK, set)
}
