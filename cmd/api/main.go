package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"rolegate-api/core"
)

func main() {
	cfg := core.Load()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		cfg, err = core.ApplyFile(cfg, path)
		if err != nil {
			log.Fatalf("failed to load config file: %v", err)
		}
	}
	ctx := context.Background()

	logCloser, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	redisClient, err := core.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer redisClient.Close()

	codec, err := core.NewTokenCodec(cfg.JWTSecret, cfg.JWTExpirationMs)
	if err != nil {
		log.Fatalf("invalid token configuration: %v", err)
	}
	validator := core.NewTokenValidator(codec)

	userRepo := core.NewPgUserRepository(db)
	limiter := core.NewLoginLimiter(redisClient, cfg.LoginMaxAttempts, time.Duration(cfg.LoginAttemptWindowMs)*time.Millisecond)
	authService := core.NewRepositoryAuthService(userRepo, codec, limiter)

	if err := core.BootstrapAdmin(ctx, userRepo, cfg); err != nil {
		log.Fatalf("bootstrap admin failed: %v", err)
	}

	router := core.NewRouter(cfg, authService, validator, userRepo)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("starting api server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
