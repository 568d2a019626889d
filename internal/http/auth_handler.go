package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"convo-chat/internal/service"
)

const (
	sessionCookieName = "session"
	avatarFormField   = "profile-image"
	maxAvatarBytes    = 5 << 20
)

// AuthHandler mantiene dependencias para los endpoints de cuenta y perfil.
type AuthHandler struct {
	logger      *zap.Logger
	authServ    *service.AuthService
	profileServ *service.ProfileService
	tokens      *service.TokenService
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, profileServ *service.ProfileService, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		authServ:    authServ,
		profileServ: profileServ,
		tokens:      tokens,
	}
}

// Signup maneja POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid signup request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, token, err := h.authServ.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		default:
			h.logger.Error("signup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign up"})
		}
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login maneja POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, token, err := h.authServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
		}
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// GetUserInfo maneja GET /api/auth/user-info.
func (h *AuthHandler) GetUserInfo(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.authServ.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("get user info failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get user info"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile maneja POST /api/auth/update-profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Color     int    `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "first name and last name are required"})
		return
	}

	user, err := h.profileServ.UpdateProfile(c.Request.Context(), userID, req.FirstName, req.LastName, req.Color)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "first name and last name are required"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			h.logger.Error("update profile failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// AddProfileImage maneja POST /api/auth/add-profile-image (multipart).
func (h *AuthHandler) AddProfileImage(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileHeader, err := c.FormFile(avatarFormField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}
	if fileHeader.Size > maxAvatarBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("open uploaded image failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		h.logger.Error("read uploaded image failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read image"})
		return
	}
	// El header puede no coincidir con el stream; el límite manda sobre lo
	// efectivamente leído.
	if len(data) > maxAvatarBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image too large"})
		return
	}

	user, err := h.profileServ.SetAvatar(c.Request.Context(), userID, data, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			h.logger.Error("add profile image failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add profile image"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RemoveProfileImage maneja DELETE /api/auth/remove-profile-image.
func (h *AuthHandler) RemoveProfileImage(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.profileServ.DeleteAvatar(c.Request.Context(), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrNoImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no profile image to delete"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			h.logger.Error("remove profile image failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove profile image"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile image deleted"})
}

// Logout maneja POST /api/auth/logout. Idempotente: solo pisa la cookie con
// un valor vencido; el servidor no guarda sesiones que revocar.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(h.tokens.TTL().Seconds())
	c.SetCookie(sessionCookieName, token, maxAge, "/", "", false, true)
}
