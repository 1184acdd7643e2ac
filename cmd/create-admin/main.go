package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"venuehub/internal/auth"
	"venuehub/internal/config"
	"venuehub/internal/database"
	"venuehub/internal/external"
	"venuehub/internal/logger"
	"venuehub/internal/repository"
	"venuehub/internal/service"
)

// Admins cannot self-register; this tool provisions them.
func main() {
	var email, firstName, lastName string
	flag.StringVar(&email, "email", "", "Admin email (required)")
	flag.StringVar(&firstName, "first-name", "Admin", "Admin first name")
	flag.StringVar(&lastName, "last-name", "User", "Admin last name")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// The password is read from the environment to keep it out of shell history
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || len(password) < 8 {
		slog.Error("Usage: ADMIN_PASSWORD=<at least 8 chars> create-admin -email <email>")
		os.Exit(2)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	services := service.NewServices(repository.NewRepositories(db), service.Dependencies{
		Tokens: auth.NewTokenManager(cfg.Auth),
		Mailer: external.NewMailer(cfg.Mail),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := services.Auth.CreateAdmin(ctx, email, password, firstName, lastName)
	if err != nil {
		logger.Fatal("Failed to create admin", "email", email, "error", err)
	}

	slog.Info("Admin created", "id", admin.ID, "email", admin.Email)
}
