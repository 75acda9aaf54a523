package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	repo "github.com/oksasatya/go-blog-cms/internal/domain/repository"
	"github.com/oksasatya/go-blog-cms/pkg/helpers"
	"github.com/oksasatya/go-blog-cms/pkg/mailer"
)

// ArticleIndexer keeps a full-text copy of articles
type ArticleIndexer interface {
	Index(ctx context.Context, a *entity.Article) error
	Delete(ctx context.Context, id int64) error
	// Search returns matching ids in rank order plus the total hit count
	Search(ctx context.Context, q SearchQuery) ([]int64, int64, error)
}

// reindex refreshes the index copy of every listed article; failures only log
func reindex(ctx context.Context, idx ArticleIndexer, logger logrus.FieldLogger, f repo.ArticleFilter, articles repo.ArticleRepository) {
	if idx == nil {
		return
	}
	rows, _, err := articles.List(ctx, f)
	if err != nil {
		helpers.LogWarn(logger, "load articles for reindex failed", err, nil)
		return
	}
	for i := range rows {
		if err := idx.Index(ctx, &rows[i]); err != nil {
			helpers.LogWarn(logger, "index article failed", err, logrus.Fields{"article_id": rows[i].ID})
		}
	}
}

// unindex drops ids from the index; failures only log
func unindex(ctx context.Context, idx ArticleIndexer, logger logrus.FieldLogger, ids []int64) {
	if idx == nil {
		return
	}
	for _, id := range ids {
		if err := idx.Delete(ctx, id); err != nil {
			helpers.LogWarn(logger, "unindex article failed", err, logrus.Fields{"article_id": id})
		}
	}
}

type SearchQuery struct {
	Text     string
	AuthorID *int64
	Page     PageQuery
}

// MailQueue hands emails to the background worker
type MailQueue interface {
	Enqueue(ctx context.Context, job mailer.EmailJob) error
}

// Cache stores small JSON read models
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	cacheKeyTagOptions    = "options:tags"
	cacheKeyAuthorOptions = "options:authors"
	optionsTTL            = 5 * time.Minute
)
