package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	repo "github.com/oksasatya/go-blog-cms/internal/domain/repository"
	"github.com/oksasatya/go-blog-cms/pkg/helpers"
)

type AuthService struct {
	Users      repo.UserRepository
	JWT        *helpers.JWTManager
	BcryptCost int
	Emails     *EmailComposer
	Logger     logrus.FieldLogger

	// Cache holds the author options a registration makes stale; optional
	Cache Cache
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, bcryptCost int, emails *EmailComposer, logger logrus.FieldLogger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, BcryptCost: bcryptCost, Emails: emails, Logger: logger}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks the credentials and issues an access token.
// Unknown emails still pay for a bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		helpers.CompareDummy(password)
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return "", ErrInvalidCredentials
	}
	return s.issue(u)
}

// Register creates an AUTHOR account and signs it in
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	email := normalizeEmail(in.Email)
	taken, err := s.Users.EmailExists(ctx, email, 0)
	if err != nil {
		return "", fmt.Errorf("check email: %w", err)
	}
	if taken {
		return "", ErrEmailTaken
	}

	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Username: strings.TrimSpace(in.Username),
		Email:    email,
		Password: hash,
		Role:     entity.RoleAuthor,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	dropAuthorOptions(ctx, s.Cache, s.Logger)
	s.Emails.Welcome(ctx, u)
	return s.issue(u)
}

func (s *AuthService) issue(u *entity.User) (string, error) {
	token, _, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return "", err
	}
	return token, nil
}

// Authenticate resolves a bearer token into the identity of a stored user
func (s *AuthService) Authenticate(ctx context.Context, token string) (entity.Identity, error) {
	claims, err := s.JWT.ParseAccessToken(token)
	if err != nil {
		switch {
		case helpers.IsTokenExpired(err):
			return entity.Identity{}, ErrTokenExpired
		case helpers.IsTokenError(err):
			return entity.Identity{}, ErrInvalidToken
		}
		return entity.Identity{}, fmt.Errorf("parse token: %w", err)
	}

	u, err := s.Users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return entity.Identity{}, ErrInvalidToken
	}
	if err != nil {
		return entity.Identity{}, fmt.Errorf("load user: %w", err)
	}
	return u.Identity(), nil
}
