//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hugh/docvault/internal/database"
	"github.com/hugh/docvault/internal/database/models"
	"github.com/hugh/docvault/internal/users"
	"github.com/hugh/docvault/pkg/config"
	"github.com/hugh/docvault/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	email := envOr("SEED_EMAIL", "test@example.com")
	password := envOr("SEED_PASSWORD", "password")
	name := envOr("SEED_NAME", "Test User")

	ctx := context.Background()
	store := users.NewStore(db)

	if _, err := store.FindByEmail(ctx, email); err == nil {
		fmt.Printf("User already exists: %s\n", email)
		return
	} else if !errors.Is(err, users.ErrUserNotFound) {
		log.Fatalf("failed to look up user: %v", err)
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// The store only ever creates viewers, so the admin row is written directly.
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		log.Fatalf("failed to create user: %v", err)
	}

	fmt.Printf("Admin user created successfully!\n")
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("ID: %s\n", user.ID)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
