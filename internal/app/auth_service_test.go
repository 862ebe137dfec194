package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"liftlog/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id string) (*domain.User, error)
	createFn        func(ctx context.Context, id, username, passwordHash string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, id, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, id, username, passwordHash)
	}
	return &domain.User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, userID, token string, expiresAt time.Time) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, userID, token string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, token, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, errors.New("not found")
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	password := "testpass123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{
				ID:           "u-1",
				Username:     "testuser",
				PasswordHash: string(hash),
			}, nil
		},
	}

	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, userID, token string, expiresAt time.Time) error {
			if userID != "u-1" {
				t.Errorf("expected userID u-1, got %s", userID)
			}
			if token == "" {
				t.Error("token should not be empty")
			}
			return nil
		},
	}

	svc := NewAuthService(users, sessions)
	token, err := svc.Login(ctx, "testuser", password)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Error("expected token, got empty string")
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{
				ID:           "u-1",
				Username:     "testuser",
				PasswordHash: string(hash),
			}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})

	_, err := svc.Login(ctx, "testuser", "wrongpass")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	ctx := context.Background()

	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{})

	_, err := svc.Login(ctx, "nobody", "whatever")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_ValidateSession_Valid(t *testing.T) {
	ctx := context.Background()
	token := "validtoken"

	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{
				Token:     token,
				UserID:    "u-1",
				ExpiresAt: time.Now().Add(1 * time.Hour),
			}, nil
		},
	}

	users := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{
				ID:       "u-1",
				Username: "testuser",
			}, nil
		},
	}

	svc := NewAuthService(users, sessions)
	user, err := svc.ValidateSession(ctx, token)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %s", user.Username)
	}
}

func TestAuthService_ValidateSession_Expired(t *testing.T) {
	ctx := context.Background()
	token := "expiredtoken"

	deleted := false
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{
				Token:     token,
				UserID:    "u-1",
				ExpiresAt: time.Now().Add(-1 * time.Hour),
			}, nil
		},
		deleteFn: func(ctx context.Context, tok string) error {
			deleted = true
			return nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions)
	_, err := svc.ValidateSession(ctx, token)

	if err != ErrSessionExpired {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if !deleted {
		t.Error("expected expired session to be deleted")
	}
}

func TestAuthService_CreateInitialUser(t *testing.T) {
	ctx := context.Background()

	var gotHash string
	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) { return 0, nil },
		createFn: func(ctx context.Context, id, username, passwordHash string) (*domain.User, error) {
			if id == "" {
				t.Error("expected a generated user id")
			}
			gotHash = passwordHash
			return &domain.User{ID: id, Username: username, PasswordHash: passwordHash}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	if err := svc.CreateInitialUser(ctx, "admin", "secret123"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(gotHash), []byte("secret123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_CreateInitialUser_AlreadyExists(t *testing.T) {
	ctx := context.Background()

	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) { return 1, nil },
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	if err := svc.CreateInitialUser(ctx, "admin", "secret123"); err == nil {
		t.Error("expected error when users already exist")
	}
}

func TestAuthService_LoginWithUser_Provisions(t *testing.T) {
	ctx := context.Background()

	created := false
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, id, username, passwordHash string) (*domain.User, error) {
			created = true
			if passwordHash != "" {
				t.Errorf("expected empty password hash for sso user, got %q", passwordHash)
			}
			return &domain.User{ID: id, Username: username}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	token, err := svc.LoginWithUser(ctx, "sso@example.com")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Error("expected token, got empty string")
	}
	if !created {
		t.Error("expected user to be provisioned")
	}
}

func TestAuthService_LoginWithUser_ConflictRetries(t *testing.T) {
	ctx := context.Background()

	lookups := 0
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			lookups++
			if lookups == 1 {
				return nil, nil
			}
			return &domain.User{ID: "u-race", Username: username}, nil
		},
		createFn: func(ctx context.Context, id, username, passwordHash string) (*domain.User, error) {
			return nil, domain.ErrConflict
		},
	}

	var sessionUser string
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, userID, token string, expiresAt time.Time) error {
			sessionUser = userID
			return nil
		},
	}

	svc := NewAuthService(users, sessions)
	if _, err := svc.LoginWithUser(ctx, "sso@example.com"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sessionUser != "u-race" {
		t.Errorf("expected session for u-race, got %s", sessionUser)
	}
}
