package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"convo-chat/internal/domain"
	"convo-chat/internal/service"
)

func protectedRouter(tokens *service.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", SessionAuthMiddleware(zap.NewNop(), tokens), func(c *gin.Context) {
		userID, ok := GetAuthUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": userID})
	})
	return r
}

func TestSessionAuthMiddleware_AllowsValidToken(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	token, err := tokens.Issue(domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	protectedRouter(tokens).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionAuthMiddleware_UnauthorizedVariantsCollapse(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	otherSecret := service.NewTokenService("other-secret", time.Hour)

	foreign, err := otherSecret.Issue(domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	now := time.Now().UTC()
	expiredClaims := service.SessionClaims{
		UserID: "u1",
		Email:  "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "convo-chat",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	router := protectedRouter(tokens)

	cases := []struct {
		name  string
		token string
	}{
		{"no cookie", ""},
		{"malformed token", "garbage"},
		{"expired token", expired},
		{"foreign signature", foreign},
	}

	var firstBody string
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if tc.token != "" {
			req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: tc.token})
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", tc.name, rec.Code)
		}
		if firstBody == "" {
			firstBody = rec.Body.String()
		} else if rec.Body.String() != firstBody {
			t.Fatalf("%s: all unauthorized responses must be identical, got %q vs %q", tc.name, rec.Body.String(), firstBody)
		}
	}
}
