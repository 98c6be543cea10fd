package main

import (
	"context"
	"net/http"
	"time"

	"drinkbuddies/backend/internal/api/handler"
	"drinkbuddies/backend/internal/auth"
	"drinkbuddies/backend/internal/chathub"
	"drinkbuddies/backend/internal/config"
	"drinkbuddies/backend/internal/logging"
	"drinkbuddies/backend/internal/models"
	"drinkbuddies/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg config.Config, log zerolog.Logger) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect PostgreSQL")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect Redis")
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.PrivateMessage{},
		&models.ChatMessage{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	log.Info().Msg("database and Redis connections established, migrations complete")
	return db, rdb
}

func main() {
	dotenvErr := godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	if dotenvErr != nil {
		log.Warn().Msg("no .env file loaded")
	}
	log.Info().Msg("starting DrinkBuddies messaging backend")

	db, rdb := setupDependencies(cfg, log)

	store := storage.NewService(db, rdb)
	tokens := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)

	registry := chathub.NewRegistry()
	backbone := chathub.NewRedisBackbone(rdb)
	gate := chathub.NewGate(tokens, store)
	relay := chathub.NewRelay(registry, backbone, store, log)

	h := handler.NewHandler(tokens, store, gate, relay, log)

	r := gin.Default()

	// Live sessions; credential travels as a query parameter.
	r.GET("/api/chat/ws/private/:friendUsername", h.ServePrivateChat)
	r.GET("/api/chat/ws", h.ServeGlobalChat)

	// Conventional request/response surface.
	authorized := r.Group("/api", h.RequireAuth)
	authorized.GET("/friends/messages/:friendUsername", h.GetConversation)
	authorized.POST("/friends/messages", h.SendMessage)

	server := &http.Server{
		Addr:           cfg.Addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
