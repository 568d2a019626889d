package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"convo-chat/internal/config"
	"convo-chat/internal/db"
	apihttp "convo-chat/internal/http"
	"convo-chat/internal/repository"
	"convo-chat/internal/service"
	"convo-chat/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("db schema", zap.Error(err))
	}

	var profileCache service.ProfileCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			profileCache = service.NewRedisProfileCache(redisClient)
		}
		cancel()
	}
	if profileCache == nil {
		// Ambos servicios deben compartir el mismo cache para que las
		// invalidaciones de perfil alcancen al camino current-user.
		profileCache = service.NewMemoryProfileCache()
	}

	var images storage.ImageStore
	switch cfg.AvatarStorage {
	case "s3":
		s3Store, err := storage.NewS3ImageStore(ctx, cfg.S3Region, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
		if err != nil {
			logger.Fatal("s3 image store init", zap.Error(err))
		}
		images = s3Store
	default:
		images = storage.NewDiskImageStore(cfg.UploadDir, "/uploads/profiles")
	}

	userRepo := repository.NewPgUserRepository(pool)
	tokenSvc := service.NewTokenService(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	authSvc := service.NewAuthService(logger, userRepo, tokenSvc, profileCache)
	profileSvc := service.NewProfileService(logger, userRepo, images, profileCache)
	authHandler := apihttp.NewAuthHandler(logger, authSvc, profileSvc, tokenSvc)

	router := apihttp.NewRouter(apihttp.RouterOptions{
		Logger:     logger,
		AuthH:      authHandler,
		Tokens:     tokenSvc,
		Images:     images,
		UploadDir:  cfg.UploadDir,
		CORSOrigin: cfg.CORSOrigin,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
