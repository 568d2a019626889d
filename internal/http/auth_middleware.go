package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"convo-chat/internal/service"
)

const authUserIDKey = "auth_user_id"

// SessionAuthMiddleware valida la cookie de sesión y guarda el user ID en el
// contexto. Es el único checkpoint de autorización: cookie ausente, token
// malformado, firma inválida y token vencido colapsan todos en el mismo 401.
func SessionAuthMiddleware(logger *zap.Logger, tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookieName)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			// La causa se distingue solo en el log, nunca en la respuesta.
			if logger != nil {
				logger.Debug("session token rejected", zap.Error(err))
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Set(authUserIDKey, claims.UserID)
		c.Next()
	}
}

// GetAuthUserID obtiene el user ID autenticado desde el contexto.
func GetAuthUserID(c *gin.Context) (string, bool) {
	val, ok := c.Get(authUserIDKey)
	if !ok {
		return "", false
	}
	userID, ok := val.(string)
	return userID, ok && userID != ""
}
