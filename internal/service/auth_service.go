package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"convo-chat/internal/domain"
	"convo-chat/internal/repository"
)

// AuthService orquesta signup, login y resolución del usuario actual.
type AuthService struct {
	logger *zap.Logger
	users  repository.UserRepository
	tokens *TokenService
	cache  ProfileCache
}

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

func NewAuthService(logger *zap.Logger, users repository.UserRepository, tokens *TokenService, cache ProfileCache) *AuthService {
	if cache == nil {
		cache = NewMemoryProfileCache()
	}
	return &AuthService{
		logger: logger,
		users:  users,
		tokens: tokens,
		cache:  cache,
	}
}

// Signup registra una cuenta nueva y emite su token de sesión. La unicidad
// del email la decide el índice único del store, nunca un check previo.
func (s *AuthService) Signup(ctx context.Context, emailAddr, password string) (domain.User, string, error) {
	emailAddr = strings.TrimSpace(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, "", ErrMissingCredentials
	}

	hash, err := HashPassword(password)
	if err != nil {
		return domain.User{}, "", err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, "", ErrEmailTaken
		}
		return domain.User{}, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

// Login verifica credenciales y emite un token de sesión. Email desconocido
// y contraseña incorrecta colapsan en el mismo error para no permitir
// enumeración de cuentas.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (domain.User, string, error) {
	emailAddr = strings.TrimSpace(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, "", ErrMissingCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

// CurrentUser resuelve la cuenta detrás de un token ya verificado por el
// middleware. Consulta primero el cache de vistas de perfil.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.User{}, ErrUserNotFound
	}
	// Una entrada cacheada puede sobrevivir hasta el TTL del cache a una
	// cuenta borrada por fuera; en este alcance las cuentas no se borran,
	// así que la ventana de staleness queda acotada y aceptada.
	if user, ok := s.cache.Get(userID); ok {
		return user, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.cache.Invalidate(userID)
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	s.cache.Set(userID, user)
	return user, nil
}
