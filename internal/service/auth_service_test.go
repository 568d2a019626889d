package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"convo-chat/internal/domain"
	"convo-chat/internal/repository"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if _, taken := m.usersByEmail[user.Email]; taken {
		return repository.ErrDuplicateEmail
	}
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id, firstName, lastName string, color int, profileSetup bool) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	user.FirstName = firstName
	user.LastName = lastName
	user.Color = color
	user.ProfileSetup = profileSetup
	m.usersByID[id] = user
	return user, nil
}

func (m *mockUserRepo) UpdateImage(_ context.Context, id, image string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	user.Image = image
	m.usersByID[id] = user
	return user, nil
}

func newAuthService(repo repository.UserRepository) *AuthService {
	tokens := NewTokenService("secret", time.Hour)
	return NewAuthService(zap.NewNop(), repo, tokens, NewMemoryProfileCache())
}

func TestAuthService_SignupIssuesToken(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	user, token, err := svc.Signup(context.Background(), "ann@example.com", "secretpw")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if token == "" {
		t.Fatalf("expected session token")
	}
	if user.PasswordHash == "" || user.PasswordHash == "secretpw" {
		t.Fatalf("password must be stored hashed")
	}
	if user.ProfileSetup {
		t.Fatalf("fresh account must not have profile setup complete")
	}
}

func TestAuthService_SignupMissingFields(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	if _, _, err := svc.Signup(context.Background(), "", "pw"); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if _, _, err := svc.Signup(context.Background(), "ann@example.com", "  "); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestAuthService_SignupDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	first, _, err := svc.Signup(context.Background(), "ann@example.com", "secretpw")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, _, err := svc.Signup(context.Background(), "ann@example.com", "otherpw"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	stored, err := repo.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("get stored user: %v", err)
	}
	if stored.PasswordHash != first.PasswordHash {
		t.Fatalf("existing account must be unmodified after duplicate signup")
	}
	if len(repo.usersByID) != 1 {
		t.Fatalf("expected exactly one account, got %d", len(repo.usersByID))
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	user, _, err := svc.Signup(context.Background(), "ann@example.com", "secretpw")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, token, err := svc.Login(context.Background(), "ann@example.com", "wrongpw"); !errors.Is(err, ErrInvalidCredentials) || token != "" {
		t.Fatalf("expected ErrInvalidCredentials and no token, got %v / %q", err, token)
	}

	stored, _ := repo.GetByID(context.Background(), user.ID)
	if stored.PasswordHash != user.PasswordHash {
		t.Fatalf("account must be untouched after failed login")
	}
}

func TestAuthService_LoginUnknownEmailSameError(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	// Email desconocido y contraseña incorrecta devuelven el mismo error.
	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_LoginSuccess(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	if _, _, err := svc.Signup(context.Background(), "ann@example.com", "secretpw"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	user, token, err := svc.Login(context.Background(), "ann@example.com", "secretpw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || user.Email != "ann@example.com" {
		t.Fatalf("expected token and account view")
	}
}

func TestAuthService_CurrentUserGone(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	user, _, err := svc.Signup(context.Background(), "ann@example.com", "secretpw")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	delete(repo.usersByID, user.ID)
	delete(repo.usersByEmail, user.Email)

	if _, err := svc.CurrentUser(context.Background(), user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for deleted account, got %v", err)
	}
	// La resolución fallida no debe dejar nada cacheado detrás.
	if _, err := svc.CurrentUser(context.Background(), user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on repeat lookup, got %v", err)
	}
}

func TestAuthService_CurrentUserUsesCache(t *testing.T) {
	repo := newMockUserRepo()
	cache := NewMemoryProfileCache()
	tokens := NewTokenService("secret", time.Hour)
	svc := NewAuthService(zap.NewNop(), repo, tokens, cache)

	user, _, err := svc.Signup(context.Background(), "ann@example.com", "secretpw")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := svc.CurrentUser(context.Background(), user.ID); err != nil {
		t.Fatalf("current user: %v", err)
	}

	// La entrada cacheada resuelve sin tocar el store mientras dura el TTL;
	// el staleness frente a un borrado externo queda acotado a esa ventana.
	delete(repo.usersByID, user.ID)
	got, err := svc.CurrentUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("current user from cache: %v", err)
	}
	if got.Email != "ann@example.com" {
		t.Fatalf("unexpected cached view: %+v", got)
	}
}
