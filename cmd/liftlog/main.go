package main

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"log"
	"net/http"
	"os"

	adapthttp "liftlog/internal/adapter/http"
	"liftlog/internal/adapter/postgres"
	"liftlog/internal/adapter/sqlite"
	"liftlog/internal/app"
	"liftlog/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/csrf"
	"golang.org/x/oauth2"
)

func main() {
	addr := env("ADDR", ":8080")
	webDir := env("WEB_DIR", "web")

	var (
		exerciseRepo domain.ExerciseRepository
		workoutRepo  domain.WorkoutRepository
		linkRepo     domain.WorkoutExerciseRepository
		setRepo      domain.SetRepository
		userRepo     domain.UserRepository
		sessionRepo  domain.SessionRepository
		closer       io.Closer
	)

	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		db, err := postgres.Open(connStr)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		closer = db
		exerciseRepo = postgres.NewExerciseRepo(db)
		workoutRepo = postgres.NewWorkoutRepo(db)
		linkRepo = postgres.NewWorkoutExerciseRepo(db)
		setRepo = postgres.NewSetRepo(db)
		userRepo = postgres.NewUserRepo(db)
		sessionRepo = postgres.NewSessionRepo(db)
	} else {
		db, err := sqlite.Open(env("SQLITE_PATH", "liftlog.db"))
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		closer = db
		exerciseRepo = sqlite.NewExerciseRepo(db)
		workoutRepo = sqlite.NewWorkoutRepo(db)
		linkRepo = sqlite.NewWorkoutExerciseRepo(db)
		setRepo = sqlite.NewSetRepo(db)
		userRepo = sqlite.NewUserRepo(db)
		sessionRepo = sqlite.NewSessionRepo(db)
	}
	defer func() { _ = closer.Close() }()

	catalogSvc := app.NewCatalogService(exerciseRepo)
	workoutSvc := app.NewWorkoutService(workoutRepo, linkRepo, catalogSvc)
	setSvc := app.NewSetService(setRepo)
	authSvc := app.NewAuthService(userRepo, sessionRepo)

	srv := adapthttp.New(authSvc, catalogSvc, workoutSvc, setSvc, webDir)
	if cfg, err := loadOIDC(context.Background()); err != nil {
		log.Fatalf("oidc: %v", err)
	} else if cfg.Enabled {
		srv = srv.WithOIDC(cfg)
	}

	h := srv.Handler()
	if keyHex := os.Getenv("CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		h = csrf.Protect(key, csrf.Path("/"))(h)
	}

	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func loadOIDC(ctx context.Context) (adapthttp.OIDCConfig, error) {
	issuer := os.Getenv("OIDC_ISSUER")
	if issuer == "" {
		return adapthttp.OIDCConfig{}, nil
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, err
	}

	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
