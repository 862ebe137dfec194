package adapthttp_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	adapthttp "liftlog/internal/adapter/http"
	"liftlog/internal/adapter/memory"
	"liftlog/internal/app"
)

// ---------------------------------------------------------------------------
// Test-server helper
// ---------------------------------------------------------------------------

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db := memory.New()
	catalog := app.NewCatalogService(memory.NewExerciseRepo(db))
	workouts := app.NewWorkoutService(memory.NewWorkoutRepo(db), memory.NewWorkoutExerciseRepo(db), catalog)
	sets := app.NewSetService(memory.NewSetRepo(db))
	auth := app.NewAuthService(memory.NewUserRepo(db), memory.NewSessionRepo(db))

	webDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html></html>"), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := adapthttp.New(auth, catalog, workouts, sets, webDir).WithoutAuth()
	return httptest.NewServer(srv.Handler())
}

func doJSON(t *testing.T, method, url string, payload any) *http.Response {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func createWorkout(t *testing.T, baseURL string) int64 {
	t.Helper()
	resp := doJSON(t, http.MethodPost, baseURL+"/api/workouts", map[string]any{
		"name":      "Push Day",
		"startedAt": time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local).Format(time.RFC3339),
	})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	return int64(decodeBody(t, resp)["id"].(float64))
}

func addExercise(t *testing.T, baseURL string, workoutID int64, name string) int64 {
	t.Helper()
	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/workouts/%d/exercises", baseURL, workoutID),
		map[string]any{"exerciseName": name})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	return int64(decodeBody(t, resp)["id"].(float64))
}

func addSet(t *testing.T, baseURL string, linkID int64, reps int, weight string) map[string]any {
	t.Helper()
	payload := map[string]any{"workoutExerciseId": linkID, "reps": reps}
	if weight != "" {
		payload["weight"] = weight
	}
	resp := doJSON(t, http.MethodPost, baseURL+"/api/sets", payload)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	return decodeBody(t, resp)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	db := memory.New()
	catalog := app.NewCatalogService(memory.NewExerciseRepo(db))
	workouts := app.NewWorkoutService(memory.NewWorkoutRepo(db), memory.NewWorkoutExerciseRepo(db), catalog)
	sets := app.NewSetService(memory.NewSetRepo(db))
	auth := app.NewAuthService(memory.NewUserRepo(db), memory.NewSessionRepo(db))

	srv := adapthttp.New(auth, catalog, workouts, sets, t.TempDir())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, path := range []string{"/api/exercises", "/api/workouts", "/api/workouts/1"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close() //nolint:errcheck
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, resp.StatusCode)
		}
	}
}

func TestWorkoutCreateValidation(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/workouts", map[string]any{
		"startedAt": "2026-03-14T09:30:00Z",
	})
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "Workout name is required" {
		t.Errorf("expected name-required message, got %v", body["error"])
	}
}

func TestWorkoutNotFound(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/workouts/999")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestWorkoutDayView(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	id := createWorkout(t, ts.URL)

	resp, err := http.Get(ts.URL + "/api/workouts?date=2026-03-14")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	workouts := body["workouts"].([]any)
	if len(workouts) != 1 {
		t.Fatalf("expected 1 workout, got %d", len(workouts))
	}
	first := workouts[0].(map[string]any)
	if int64(first["id"].(float64)) != id {
		t.Errorf("expected workout %d in day view, got %v", id, first["id"])
	}
}

func TestLogSetsScenario(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	workoutID := createWorkout(t, ts.URL)
	linkID := addExercise(t, ts.URL, workoutID, "Bench Press")

	first := addSet(t, ts.URL, linkID, 8, "100")
	second := addSet(t, ts.URL, linkID, 6, "102.50")
	third := addSet(t, ts.URL, linkID, 5, "105")

	if first["setNumber"].(float64) != 1 || second["setNumber"].(float64) != 2 || third["setNumber"].(float64) != 3 {
		t.Fatalf("expected set numbers 1..3, got %v %v %v",
			first["setNumber"], second["setNumber"], third["setNumber"])
	}
	if second["weight"] != "102.50" {
		t.Errorf("expected weight 102.50 preserved exactly, got %v", second["weight"])
	}

	// Deleting a middle set never renumbers the survivors; the next set
	// continues past the highest remaining number.
	resp := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/sets/%d", ts.URL, int64(second["id"].(float64))), nil)
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	fourth := addSet(t, ts.URL, linkID, 4, "")
	if fourth["setNumber"].(float64) != 4 {
		t.Errorf("expected next set number 4, got %v", fourth["setNumber"])
	}

	detail, err := http.Get(fmt.Sprintf("%s/api/workouts/%d", ts.URL, workoutID))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer detail.Body.Close() //nolint:errcheck
	body := decodeBody(t, detail)
	exercises := body["exercises"].([]any)
	if len(exercises) != 1 {
		t.Fatalf("expected 1 exercise, got %d", len(exercises))
	}
	sets := exercises[0].(map[string]any)["sets"].([]any)
	if len(sets) != 3 {
		t.Fatalf("expected 3 sets after delete, got %d", len(sets))
	}
	if got := sets[0].(map[string]any)["setNumber"].(float64); got != 1 {
		t.Errorf("expected surviving set 1 unrenumbered, got %v", got)
	}
	if got := sets[1].(map[string]any)["setNumber"].(float64); got != 3 {
		t.Errorf("expected surviving set 3 unrenumbered, got %v", got)
	}
}

func TestAddExerciseByNameReusesCatalogRow(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	w1 := createWorkout(t, ts.URL)
	w2 := createWorkout(t, ts.URL)

	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/workouts/%d/exercises", ts.URL, w1),
		map[string]any{"exerciseName": "Bench Press"})
	firstLink := decodeBody(t, resp)
	resp.Body.Close() //nolint:errcheck

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/workouts/%d/exercises", ts.URL, w2),
		map[string]any{"exerciseName": "bench press"})
	secondLink := decodeBody(t, resp)
	resp.Body.Close() //nolint:errcheck

	if firstLink["exerciseId"] != secondLink["exerciseId"] {
		t.Errorf("expected case-insensitive match to reuse exercise %v, got %v",
			firstLink["exerciseId"], secondLink["exerciseId"])
	}

	catalog, err := http.Get(ts.URL + "/api/exercises")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer catalog.Body.Close() //nolint:errcheck
	body := decodeBody(t, catalog)
	if n := len(body["exercises"].([]any)); n != 1 {
		t.Errorf("expected 1 catalog entry, got %d", n)
	}
}

func TestRemoveExerciseDeletesItsSets(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	workoutID := createWorkout(t, ts.URL)
	linkID := addExercise(t, ts.URL, workoutID, "Squat")
	addSet(t, ts.URL, linkID, 5, "140")

	resp := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/workout-exercises/%d", ts.URL, linkID), nil)
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	detail, err := http.Get(fmt.Sprintf("%s/api/workouts/%d", ts.URL, workoutID))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer detail.Body.Close() //nolint:errcheck
	body := decodeBody(t, detail)
	if n := len(body["exercises"].([]any)); n != 0 {
		t.Errorf("expected no exercises after removal, got %d", n)
	}
}

func TestDayViewETagRevalidation(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/workouts?date=2026-03-14")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	etag := resp.Header.Get("ETag")
	resp.Body.Close() //nolint:errcheck
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/workouts?date=2026-03-14", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}

	createWorkout(t, ts.URL)

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/api/workouts?date=2026-03-14", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after mutation, got %d", resp.StatusCode)
	}
}

func TestSetValidationMessage(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	workoutID := createWorkout(t, ts.URL)
	linkID := addExercise(t, ts.URL, workoutID, "Row")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sets", map[string]any{
		"workoutExerciseId": linkID,
		"weight":            "100.125",
	})
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "Weight must be a decimal with at most 2 decimal places" {
		t.Errorf("unexpected message: %v", body["error"])
	}
}

func TestDetailViewETagRevalidationAfterSetMutations(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	workoutID := createWorkout(t, ts.URL)
	linkID := addExercise(t, ts.URL, workoutID, "Deadlift")
	detailURL := fmt.Sprintf("%s/api/workouts/%d", ts.URL, workoutID)

	fetch := func(etag string) (int, string) {
		t.Helper()
		req, _ := http.NewRequest(http.MethodGet, detailURL, nil)
		if etag != "" {
			req.Header.Set("If-None-Match", etag)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close() //nolint:errcheck
		return resp.StatusCode, resp.Header.Get("ETag")
	}

	status, etag := fetch("")
	if status != http.StatusOK || etag == "" {
		t.Fatalf("expected 200 with ETag, got %d %q", status, etag)
	}
	if status, _ := fetch(etag); status != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", status)
	}

	set := addSet(t, ts.URL, linkID, 5, "100.00")
	status, etag = fetch(etag)
	if status != http.StatusOK {
		t.Fatalf("expected 200 after set create, got %d", status)
	}
	if status, _ := fetch(etag); status != http.StatusNotModified {
		t.Fatalf("expected 304 before next mutation, got %d", status)
	}

	setID := int64(set["id"].(float64))
	resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/sets/%d", ts.URL, setID),
		map[string]any{"reps": 8})
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	status, etag = fetch(etag)
	if status != http.StatusOK {
		t.Fatalf("expected 200 after set update, got %d", status)
	}

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/sets/%d", ts.URL, setID), nil)
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if status, _ := fetch(etag); status != http.StatusOK {
		t.Fatalf("expected 200 after set delete, got %d", status)
	}
}

func TestDetailValidatorForUnknownWorkoutGets404(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	// Even a validator that matches the current generation cannot turn an
	// unreadable workout into a 304; the ownership lookup answers first.
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/workouts/999", nil)
	req.Header.Set("If-None-Match", `W/"test-user:/dashboard/workout/999.0"`)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
