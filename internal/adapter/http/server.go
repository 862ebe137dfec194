package adapthttp

import (
	"net/http"

	"liftlog/internal/app"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig carries the optional SSO provider wiring. Enabled is false when
// no issuer is configured, and the SSO routes answer 404.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth     *app.AuthService
	catalog  *app.CatalogService
	workouts *app.WorkoutService
	sets     *app.SetService

	views      *ViewCache
	oidcConfig OIDCConfig
	webDir     string

	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, catalog *app.CatalogService, workouts *app.WorkoutService, sets *app.SetService, webDir string) *Server {
	return &Server{
		auth:     auth,
		catalog:  catalog,
		workouts: workouts,
		sets:     sets,
		views:    NewViewCache(),
		webDir:   webDir,
	}
}

// WithOIDC enables the SSO routes.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithoutAuth makes the auth middleware inject a fixed caller instead of
// resolving a session (for tests).
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/setup", s.handleSetupUser)
	api.HandleFunc("/auth/config", s.handleConfig)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	protected := http.NewServeMux()
	protected.HandleFunc("/exercises", s.handleExercises)
	protected.HandleFunc("/workouts", s.handleWorkouts)
	protected.HandleFunc("/workouts/", s.handleWorkoutByID)
	protected.HandleFunc("/workout-exercises/", s.handleWorkoutExerciseByID)
	protected.HandleFunc("/sets", s.handleSets)
	protected.HandleFunc("/sets/", s.handleSetByID)

	api.Handle("/", s.authMiddleware(protected))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return withNoCache(s.loggingMiddleware(root))
}
