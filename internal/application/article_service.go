package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	repo "github.com/oksasatya/go-blog-cms/internal/domain/repository"
	"github.com/oksasatya/go-blog-cms/pkg/helpers"
)

type ArticleService struct {
	Repo    repo.ArticleRepository
	Indexer ArticleIndexer // optional
	Logger  logrus.FieldLogger
	Now     func() time.Time
}

func NewArticleService(r repo.ArticleRepository, indexer ArticleIndexer, logger logrus.FieldLogger) *ArticleService {
	return &ArticleService{Repo: r, Indexer: indexer, Logger: logger, Now: time.Now}
}

// ArticleQuery holds the listing filters; nil pointers are not applied
type ArticleQuery struct {
	PageQuery
	Search   string
	Status   string
	TagID    *int64
	AuthorID *int64
}

type CreateArticleInput struct {
	Title       string
	Content     string
	TagIDs      []int64
	PublishedAt *time.Time
	AuthorID    *int64
}

// UpdateArticleInput leaves nil fields untouched
type UpdateArticleInput struct {
	Title       *string
	Content     *string
	TagIDs      []int64
	PublishedAt *time.Time
	AuthorID    *int64
}

// statusFilter maps the status query value onto the published flag.
// "DRAFT" selects unpublished rows, any other value selects published ones.
func statusFilter(status string) *bool {
	status = strings.TrimSpace(status)
	if status == "" || status == "undefined" || status == "null" {
		return nil
	}
	published := !strings.EqualFold(status, "DRAFT")
	return &published
}

// scopeAuthor forces non-admin callers onto their own articles
func scopeAuthor(caller entity.Identity, requested *int64) *int64 {
	if !caller.IsAdmin() {
		id := caller.ID
		return &id
	}
	return requested
}

func (s *ArticleService) List(ctx context.Context, caller entity.Identity, q ArticleQuery) (Page[entity.Article], error) {
	pq := q.PageQuery.Normalize()
	f := repo.ArticleFilter{
		Search:    strings.TrimSpace(q.Search),
		Published: statusFilter(q.Status),
		TagID:     q.TagID,
		AuthorID:  scopeAuthor(caller, q.AuthorID),
		Limit:     pq.Limit(),
		Offset:    pq.Offset(),
	}
	items, total, err := s.Repo.List(ctx, f)
	if err != nil {
		return Page[entity.Article]{}, fmt.Errorf("list articles: %w", err)
	}
	return Page[entity.Article]{Items: items, Meta: NewMeta(pq, total)}, nil
}

// Get returns the article when the caller may see it
func (s *ArticleService) Get(ctx context.Context, caller entity.Identity, id int64) (*entity.Article, error) {
	a, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if !caller.IsAdmin() && a.AuthorID != caller.ID {
		return nil, ErrArticleNotFound
	}
	return a, nil
}

func (s *ArticleService) Create(ctx context.Context, caller entity.Identity, in CreateArticleInput) (*entity.Article, error) {
	authorID := caller.ID
	if caller.IsAdmin() && in.AuthorID != nil {
		authorID = *in.AuthorID
	}
	a := &entity.Article{
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		AuthorID:    authorID,
		PublishedAt: in.PublishedAt,
	}
	if err := s.Repo.Create(ctx, a, dedupe(in.TagIDs)); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return s.reload(ctx, a.ID)
}

func (s *ArticleService) Update(ctx context.Context, caller entity.Identity, id int64, in UpdateArticleInput) (*entity.Article, error) {
	a, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		a.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		a.Content = *in.Content
	}
	if in.PublishedAt != nil {
		a.PublishedAt = in.PublishedAt
	}
	if !caller.IsAdmin() {
		a.AuthorID = caller.ID
	} else if in.AuthorID != nil {
		a.AuthorID = *in.AuthorID
	}

	var tagIDs []int64
	if in.TagIDs != nil {
		tagIDs = dedupe(in.TagIDs)
	}
	if err := s.Repo.Update(ctx, a, tagIDs); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	return s.reload(ctx, a.ID)
}

func (s *ArticleService) Delete(ctx context.Context, caller entity.Identity, id int64) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("delete article: %w", err)
	}
	if s.Indexer != nil {
		if err := s.Indexer.Delete(ctx, id); err != nil {
			s.warn(err, id, "remove article from search index failed")
		}
	}
	return nil
}

// TogglePublish stamps published_at with the current time or clears it
func (s *ArticleService) TogglePublish(ctx context.Context, caller entity.Identity, id int64, published bool) (*entity.Article, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	var at *time.Time
	if published {
		now := s.Now().UTC()
		at = &now
	}
	if err := s.Repo.SetPublishedAt(ctx, id, at); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("toggle publish: %w", err)
	}
	return s.reload(ctx, id)
}

// Search uses the full-text index when configured and falls back to the
// database substring search otherwise.
func (s *ArticleService) Search(ctx context.Context, caller entity.Identity, text string, page PageQuery) (Page[entity.Article], error) {
	pq := page.Normalize()
	if s.Indexer == nil || strings.TrimSpace(text) == "" {
		return s.List(ctx, caller, ArticleQuery{PageQuery: pq, Search: text})
	}

	ids, total, err := s.Indexer.Search(ctx, SearchQuery{
		Text:     strings.TrimSpace(text),
		AuthorID: scopeAuthor(caller, nil),
		Page:     pq,
	})
	if err != nil {
		s.warn(err, 0, "search index query failed, falling back to database")
		return s.List(ctx, caller, ArticleQuery{PageQuery: pq, Search: text})
	}
	if len(ids) == 0 {
		return Page[entity.Article]{Items: []entity.Article{}, Meta: NewMeta(pq, total)}, nil
	}

	rows, _, err := s.Repo.List(ctx, repo.ArticleFilter{IDs: ids, AuthorID: scopeAuthor(caller, nil)})
	if err != nil {
		return Page[entity.Article]{}, fmt.Errorf("load search hits: %w", err)
	}
	byID := make(map[int64]entity.Article, len(rows))
	for _, a := range rows {
		byID[a.ID] = a
	}
	// keep the index ranking, skipping hits deleted since indexing
	items := make([]entity.Article, 0, len(ids))
	var stale []int64
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			items = append(items, a)
		} else {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		total -= int64(len(stale))
		unindex(ctx, s.Indexer, s.Logger, stale)
	}
	return Page[entity.Article]{Items: items, Meta: NewMeta(pq, total)}, nil
}

// reload fetches the stored article with author and tags, then refreshes the index
func (s *ArticleService) reload(ctx context.Context, id int64) (*entity.Article, error) {
	a, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("reload article: %w", err)
	}
	if s.Indexer != nil {
		if err := s.Indexer.Index(ctx, a); err != nil {
			s.warn(err, a.ID, "index article failed")
		}
	}
	return a, nil
}

func (s *ArticleService) warn(err error, id int64, msg string) {
	helpers.LogWarn(s.Logger, msg, err, logrus.Fields{"article_id": id})
}

// dedupe keeps the first occurrence of every id
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
