package main

import (
	"context"
	"flag"
	"log"

	"go-pos-ws/internal/config"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/database"

	"github.com/google/uuid"
)

// reset-password sets a new password for one user and signs out their sessions.
func main() {
	email := flag.String("email", "", "email of the user")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	if *email == "" || len(*password) < 6 {
		log.Fatal("usage: reset-password -email user@example.com -password newpass")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Connect(cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepo(db)
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("User %s not found: %v", *email, err)
	}
	if err := user.SetPassword(*password); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		log.Fatalf("Failed to update password: %v", err)
	}
	if err := users.UpdateTokenVersion(ctx, user.ID, uuid.New().String()); err != nil {
		log.Fatalf("Failed to revoke sessions: %v", err)
	}
	log.Printf("Password for %s has been reset", user.Email)
}
