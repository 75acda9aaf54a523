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

type UserService struct {
	Repo       repo.UserRepository
	Articles   repo.ArticleRepository
	BcryptCost int
	Emails     *EmailComposer
	Cache      Cache // optional
	Logger     logrus.FieldLogger

	// Indexer loses the articles removed with a user; optional
	Indexer ArticleIndexer
}

func NewUserService(r repo.UserRepository, articles repo.ArticleRepository, bcryptCost int, emails *EmailComposer, cache Cache, logger logrus.FieldLogger) *UserService {
	return &UserService{Repo: r, Articles: articles, BcryptCost: bcryptCost, Emails: emails, Cache: cache, Logger: logger}
}

type UserQuery struct {
	PageQuery
	Search string
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     entity.Role
}

// UpdateUserInput leaves nil fields untouched
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *entity.Role
}

// List pages through non-admin users with their article counts
func (s *UserService) List(ctx context.Context, q UserQuery) (Page[entity.User], error) {
	pq := q.PageQuery.Normalize()
	items, total, err := s.Repo.List(ctx, repo.UserFilter{
		Search:      strings.TrimSpace(q.Search),
		ExcludeRole: entity.RoleAdmin,
		Limit:       pq.Limit(),
		Offset:      pq.Offset(),
	})
	if err != nil {
		return Page[entity.User]{}, fmt.Errorf("list users: %w", err)
	}
	return Page[entity.User]{Items: items, Meta: NewMeta(pq, total)}, nil
}

func (s *UserService) find(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Get returns the user with their articles. A non-admin caller looking at
// someone else gets the article count but no articles.
func (s *UserService) Get(ctx context.Context, caller entity.Identity, id int64) (*entity.User, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	f := repo.ArticleFilter{AuthorID: &u.ID}
	hidden := !caller.IsAdmin() && caller.ID != u.ID
	if hidden {
		f.Limit = 1
	}
	articles, total, err := s.Articles.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("user articles: %w", err)
	}
	if hidden {
		articles = []entity.Article{}
	}
	u.Articles = articles
	u.ArticlesCount = total
	return u, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := in.Role
	if role == "" {
		role = entity.RoleAuthor
	}
	u := &entity.User{
		Username: strings.TrimSpace(in.Username),
		Email:    normalizeEmail(in.Email),
		Password: hash,
		Role:     role,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.invalidate(ctx)
	s.Emails.AccountCreated(ctx, u)
	return u, nil
}

// Update applies a partial patch; the hash changes only when a password is given
func (s *UserService) Update(ctx context.Context, id int64, in UpdateUserInput) (*entity.User, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Username != nil {
		u.Username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := helpers.HashPassword(*in.Password, s.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.Password = hash
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repo.ErrDuplicate):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.invalidate(ctx)
	return u, nil
}

// Delete removes the user and, with them, their articles
func (s *UserService) Delete(ctx context.Context, id int64) error {
	var doomed []int64
	if s.Indexer != nil {
		rows, _, err := s.Articles.List(ctx, repo.ArticleFilter{AuthorID: &id})
		if err != nil {
			return fmt.Errorf("list user articles: %w", err)
		}
		for _, a := range rows {
			doomed = append(doomed, a.ID)
		}
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.invalidate(ctx)
	unindex(ctx, s.Indexer, s.Logger, doomed)
	return nil
}

// AuthorOptions lists AUTHOR users for select inputs
func (s *UserService) AuthorOptions(ctx context.Context) ([]entity.User, error) {
	if s.Cache != nil {
		var cached []entity.User
		if ok, err := s.Cache.GetJSON(ctx, cacheKeyAuthorOptions, &cached); err == nil && ok {
			return cached, nil
		}
	}
	users, err := s.Repo.ListByRole(ctx, entity.RoleAuthor)
	if err != nil {
		return nil, fmt.Errorf("author options: %w", err)
	}
	if s.Cache != nil {
		// only the option fields are cached; hashes never leave the process
		slim := make([]entity.User, len(users))
		for i, u := range users {
			slim[i] = entity.User{ID: u.ID, Username: u.Username, Role: u.Role}
		}
		if err := s.Cache.SetJSON(ctx, cacheKeyAuthorOptions, slim, optionsTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("cache author options failed")
		}
	}
	return users, nil
}

// EmailTaken ignores the user with excludeID when it is non-zero
func (s *UserService) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	return s.Repo.EmailExists(ctx, normalizeEmail(email), excludeID)
}

// IsAuthor reports whether id refers to a stored AUTHOR
func (s *UserService) IsAuthor(ctx context.Context, id int64) (bool, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Role == entity.RoleAuthor, nil
}

func (s *UserService) invalidate(ctx context.Context) {
	dropAuthorOptions(ctx, s.Cache, s.Logger)
}

func dropAuthorOptions(ctx context.Context, cache Cache, logger logrus.FieldLogger) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, cacheKeyAuthorOptions); err != nil && logger != nil {
		logger.WithError(err).Warn("invalidate author options failed")
	}
}
