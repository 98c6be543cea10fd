package main

import (
	"fmt"
	"os"

	"drinkbuddies/backend/internal/auth"
	"drinkbuddies/backend/internal/config"
	"drinkbuddies/backend/internal/logging"
	"drinkbuddies/backend/internal/models"
	"drinkbuddies/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Operator CLI for the user directory and friendship store: seed users,
// connect them, and mint access tokens for testing live sessions.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.NewConsole(cfg.LogLevel)

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	store := storage.NewService(db, nil) // no redis needed for admin CLI
	tokens := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "create-user":
		if len(os.Args) != 5 {
			fmt.Println("Usage: admin create-user <username> <email> <password>")
			os.Exit(1)
		}
		username, email, password := os.Args[2], os.Args[3], os.Args[4]
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to hash password")
		}
		user := &models.User{
			Username:       username,
			Email:          email,
			HashedPassword: hash,
			IsActive:       true,
		}
		if err := store.CreateUser(user); err != nil {
			log.Fatal().Err(err).Msg("failed to create user")
		}
		fmt.Printf("User %s created with id %s\n", username, user.ID)

	case "befriend":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin befriend <username> <friend_username>")
			os.Exit(1)
		}
		a := mustUser(store, os.Args[2], log)
		b := mustUser(store, os.Args[3], log)
		if err := store.CreateFriendship(a.ID, b.ID); err != nil {
			log.Fatal().Err(err).Msg("failed to create friendship")
		}
		if err := store.AcceptFriendship(a.ID, b.ID); err != nil {
			log.Fatal().Err(err).Msg("failed to accept friendship")
		}
		fmt.Printf("%s and %s are now friends\n", a.Username, b.Username)

	case "accept-friend":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin accept-friend <requester_username> <username>")
			os.Exit(1)
		}
		requester := mustUser(store, os.Args[2], log)
		user := mustUser(store, os.Args[3], log)
		if err := store.AcceptFriendship(requester.ID, user.ID); err != nil {
			log.Fatal().Err(err).Msg("failed to accept friendship")
		}
		fmt.Println("Friend request accepted")

	case "token":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin token <username>")
			os.Exit(1)
		}
		user := mustUser(store, os.Args[2], log)
		token, err := tokens.CreateAccessToken(user.Username)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to sign token")
		}
		fmt.Println(token)

	default:
		usage()
	}
}

func mustUser(store storage.Storage, username string, log zerolog.Logger) *models.User {
	user, err := store.GetUserByUsername(username)
	if err != nil {
		log.Fatal().Err(err).Str("username", username).Msg("user lookup failed")
	}
	return user
}

func usage() {
	fmt.Println("Usage: admin <create-user|befriend|accept-friend|token> [args]")
	os.Exit(1)
}
