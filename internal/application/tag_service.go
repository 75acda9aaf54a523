package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	repo "github.com/oksasatya/go-blog-cms/internal/domain/repository"
)

type TagService struct {
	Repo     repo.TagRepository
	Articles repo.ArticleRepository
	Cache    Cache // optional
	Logger   logrus.FieldLogger

	// Indexer receives the new tag titles after a rename; optional
	Indexer ArticleIndexer
}

func NewTagService(r repo.TagRepository, articles repo.ArticleRepository, cache Cache, logger logrus.FieldLogger) *TagService {
	return &TagService{Repo: r, Articles: articles, Cache: cache, Logger: logger}
}

type TagQuery struct {
	PageQuery
	Search string
}

func (s *TagService) List(ctx context.Context, q TagQuery) (Page[entity.Tag], error) {
	pq := q.PageQuery.Normalize()
	items, total, err := s.Repo.List(ctx, repo.TagFilter{
		Search: strings.TrimSpace(q.Search),
		Limit:  pq.Limit(),
		Offset: pq.Offset(),
	})
	if err != nil {
		return Page[entity.Tag]{}, fmt.Errorf("list tags: %w", err)
	}
	return Page[entity.Tag]{Items: items, Meta: NewMeta(pq, total)}, nil
}

// Get returns the tag with the articles that use it.
// Non-admin callers only see their own articles.
func (s *TagService) Get(ctx context.Context, caller entity.Identity, id int64) (*entity.Tag, error) {
	t, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	articles, _, err := s.Articles.List(ctx, repo.ArticleFilter{TagID: &t.ID, AuthorID: scopeAuthor(caller, nil)})
	if err != nil {
		return nil, fmt.Errorf("tag articles: %w", err)
	}
	t.Articles = articles
	return t, nil
}

func (s *TagService) Create(ctx context.Context, title string) (*entity.Tag, error) {
	t := &entity.Tag{Title: strings.TrimSpace(title)}
	if err := s.Repo.Create(ctx, t); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrTagTitleTaken
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	s.invalidate(ctx)
	return t, nil
}

// Update renames the tag; a nil title returns it unchanged
func (s *TagService) Update(ctx context.Context, id int64, title *string) (*entity.Tag, error) {
	t, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	if title == nil {
		return t, nil
	}
	t.Title = strings.TrimSpace(*title)
	if err := s.Repo.Update(ctx, t); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrTagNotFound
		case errors.Is(err, repo.ErrDuplicate):
			return nil, ErrTagTitleTaken
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}
	s.invalidate(ctx)
	reindex(ctx, s.Indexer, s.Logger, repo.ArticleFilter{TagID: &t.ID}, s.Articles)
	return t, nil
}

// Delete refuses to remove a tag that any article still uses
func (s *TagService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTagNotFound
		}
		return fmt.Errorf("get tag: %w", err)
	}
	n, err := s.Repo.CountArticles(ctx, id)
	if err != nil {
		return fmt.Errorf("count tag articles: %w", err)
	}
	if n > 0 {
		return ErrTagInUse
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return ErrTagNotFound
		case errors.Is(err, repo.ErrReferenced):
			return ErrTagInUse
		}
		return fmt.Errorf("delete tag: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// Options lists every tag for select inputs, served from cache when possible
func (s *TagService) Options(ctx context.Context) ([]entity.Tag, error) {
	if s.Cache != nil {
		var cached []entity.Tag
		if ok, err := s.Cache.GetJSON(ctx, cacheKeyTagOptions, &cached); err == nil && ok {
			return cached, nil
		}
	}
	tags, err := s.Repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("tag options: %w", err)
	}
	if s.Cache != nil {
		if err := s.Cache.SetJSON(ctx, cacheKeyTagOptions, tags, optionsTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("cache tag options failed")
		}
	}
	return tags, nil
}

// TitleTaken compares case-insensitively, ignoring excludeID when non-zero
func (s *TagService) TitleTaken(ctx context.Context, title string, excludeID int64) (bool, error) {
	return s.Repo.TitleExists(ctx, strings.TrimSpace(title), excludeID)
}

// AllExist reports whether every id refers to a stored tag
func (s *TagService) AllExist(ctx context.Context, ids []int64) (bool, error) {
	unique := dedupe(ids)
	n, err := s.Repo.CountExisting(ctx, unique)
	if err != nil {
		return false, err
	}
	return n == len(unique), nil
}

func (s *TagService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, cacheKeyTagOptions); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("invalidate tag options failed")
	}
}
