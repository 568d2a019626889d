package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"convo-chat/internal/domain"
)

// TokenService emite y valida los tokens de sesión firmados. La sesión es
// completamente stateless: la validez depende solo de la firma y el expiry.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// SessionClaims son los claims transportados en la cookie de sesión.
type SessionClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

var (
	ErrTokenMalformed = errors.New("session token malformed")
	ErrTokenExpired   = errors.New("session token expired")
	ErrTokenSignature = errors.New("session token signature invalid")
)

const defaultSessionTTL = 3 * 24 * time.Hour

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "convo-chat",
	}
}

// TTL devuelve la vida útil fijada al emitir; la cookie usa el mismo valor.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue firma un token de sesión para la cuenta dada.
func (s *TokenService) Issue(user domain.User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrTokenSignature
	}
	now := time.Now().UTC()
	claims := SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify valida firma y expiry y devuelve los claims. Los tres resultados de
// falla se distinguen para logging; los callers los tratan todos como no
// autenticado.
func (s *TokenService) Verify(tokenString string) (SessionClaims, error) {
	if len(s.secret) == 0 {
		return SessionClaims{}, ErrTokenSignature
	}
	if strings.TrimSpace(tokenString) == "" {
		return SessionClaims{}, ErrTokenMalformed
	}

	var claims SessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return SessionClaims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return SessionClaims{}, ErrTokenSignature
		default:
			return SessionClaims{}, ErrTokenMalformed
		}
	}
	if !s.isValidClaims(claims) {
		return SessionClaims{}, ErrTokenMalformed
	}
	return claims, nil
}

func (s *TokenService) isValidClaims(claims SessionClaims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
