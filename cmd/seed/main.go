package main

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-blog-cms/config"
	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	repo "github.com/oksasatya/go-blog-cms/internal/domain/repository"
	pginfra "github.com/oksasatya/go-blog-cms/internal/infrastructure/postgres"
	"github.com/oksasatya/go-blog-cms/pkg/helpers"
)

// seeds the demo ADMIN account; running it again leaves an existing account alone
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))

	if existing, err := users.GetByEmail(ctx, email); err == nil {
		logger.WithFields(map[string]any{"id": existing.ID, "email": email}).Info("admin already seeded")
		return
	} else if !errors.Is(err, repo.ErrNotFound) {
		log.Fatalf("failed to look up admin: %v", err)
	}

	hash, err := helpers.HashPassword(cfg.SeedAdminPassword, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	admin := &entity.User{
		Username: cfg.SeedAdminUsername,
		Email:    email,
		Password: hash,
		Role:     entity.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	logger.WithFields(map[string]any{"id": admin.ID, "email": email, "username": admin.Username}).Info("seeded admin user")
}
