package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"convo-chat/internal/service"
	"convo-chat/internal/storage"
)

const avatarURLPrefix = "/uploads/profiles"

// RouterOptions agrupa lo necesario para montar las rutas.
type RouterOptions struct {
	Logger     *zap.Logger
	AuthH      *AuthHandler
	Tokens     *service.TokenService
	Images     storage.ImageStore
	UploadDir  string
	CORSOrigin string
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(opts RouterOptions) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(opts.Logger), gin.Recovery(), metricsMiddleware())
	if opts.CORSOrigin != "" {
		r.Use(corsMiddleware(opts.CORSOrigin))
	}

	authGate := SessionAuthMiddleware(opts.Logger, opts.Tokens)

	auth := r.Group("/api/auth")
	auth.POST("/signup", opts.AuthH.Signup)
	auth.POST("/login", opts.AuthH.Login)
	auth.GET("/user-info", authGate, opts.AuthH.GetUserInfo)
	auth.POST("/update-profile", authGate, opts.AuthH.UpdateProfile)
	auth.POST("/add-profile-image", authGate, opts.AuthH.AddProfileImage)
	auth.DELETE("/remove-profile-image", authGate, opts.AuthH.RemoveProfileImage)
	auth.POST("/logout", authGate, opts.AuthH.Logout)

	// Avatares: estáticos locales, o redirect a URL prefirmada para S3.
	if _, ok := opts.Images.(*storage.DiskImageStore); ok {
		r.Static(avatarURLPrefix, opts.UploadDir)
	} else if opts.Images != nil {
		r.GET(avatarURLPrefix+"/*ref", serveRemoteAvatar(opts.Logger, opts.Images))
	}

	r.GET("/metrics", metricsHandler())

	return r
}

func serveRemoteAvatar(logger *zap.Logger, images storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref := strings.TrimPrefix(c.Param("ref"), "/")
		url, err := images.ResolveURL(c.Request.Context(), ref)
		if err != nil {
			if logger != nil {
				logger.Warn("resolve avatar url failed", zap.String("ref", ref), zap.Error(err))
			}
			c.Status(http.StatusNotFound)
			return
		}
		c.Redirect(http.StatusFound, url)
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// corsMiddleware habilita el origen del cliente con credenciales (cookies).
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, PUT, PATCH, POST, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
